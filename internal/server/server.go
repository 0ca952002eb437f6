// Package server contains the HTTP handlers for the fakeX API.
package server

import (
	"context"
	"errors"
	"time"

	_ "fakex/docs" // swagger docs
	"fakex/internal/cache"
	"fakex/internal/config"
	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/repository"
	"fakex/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       middleware.TokenVerifier
	identity       *service.IdentityService
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
	userService    *service.UserService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, which disables the feed cache and Redis rate limits.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, verifier middleware.TokenVerifier) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if db == nil {
		return nil, errors.New("server: database is required")
	}
	if verifier == nil {
		return nil, errors.New("server: token verifier is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	feedCache := cache.New(redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("fakex-api"),
		verifier:       verifier,
		identity:       service.NewIdentityService(userRepo),
		postService: service.NewPostService(postRepo, feedCache, service.PostServiceConfig{
			AnonymousLimit: cfg.FeedAnonymousLimit,
			MaxLength:      cfg.PostMaxLength,
		}),
		commentService: service.NewCommentService(commentRepo, postRepo, feedCache, cfg.CommentMaxLength),
		likeService:    service.NewLikeService(likeRepo, postRepo, feedCache),
		userService:    service.NewUserService(userRepo),
	}

	return server, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "fakeX API",
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// ErrorHandler renders errors that escape handlers. Fiber errors keep their status.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before ContextMiddleware so the trace id reaches the request context.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/ping", s.Ping)
	app.Post("/verify-user", middleware.RequireAuth(s.verifier), s.VerifyUser)

	// The feed is the only route that serves anonymous callers.
	app.Get("/posts", middleware.OptionalAuth(s.verifier), s.ResolveViewer(), s.GetPosts)
	app.Post("/posts", s.protect(
		middleware.RateLimit(s.redis, s.config.Env, 30, time.Minute, "create_post"),
		s.CreatePost)...)
	app.Get("/posts/:id", s.protect(s.GetPost)...)
	app.Put("/posts/:id", s.protect(s.UpdatePost)...)
	app.Delete("/posts/:id", s.protect(s.DeletePost)...)

	app.Post("/posts/:postId/comments", s.protect(
		middleware.RateLimit(s.redis, s.config.Env, 60, time.Minute, "create_comment"),
		s.CreateComment)...)
	app.Get("/posts/:postId/comments", s.protect(s.GetComments)...)
	app.Put("/comments/:id", s.protect(s.UpdateComment)...)
	app.Delete("/comments/:id", s.protect(s.DeleteComment)...)

	app.Post("/posts/:postId/likes", s.protect(s.LikePost)...)
	app.Delete("/posts/:postId/likes", s.protect(s.UnlikePost)...)

	app.Get("/user", s.protect(s.GetUser)...)
	app.Get("/user/posts", s.protect(s.GetUserPosts)...)
	app.Put("/user", s.protect(s.UpdateUser)...)
}

// protect prepends token verification and viewer resolution to handlers.
func (s *Server) protect(handlers ...fiber.Handler) []fiber.Handler {
	return append([]fiber.Handler{middleware.RequireAuth(s.verifier), s.ResolveViewer()}, handlers...)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional; when it is
// not configured the service is still ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
