// Command main is the entry point for the fakeX API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fakex/internal/bootstrap"
	"fakex/internal/config"
	"fakex/internal/middleware"
	"fakex/internal/observability"
	"fakex/internal/server"
)

// @title fakeX API
// @version 1.0
// @description Minimal social feed API with posts, comments and likes.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider access token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "fakex-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, redisClient, err := bootstrap.InitRuntime(rootCtx, cfg, bootstrap.Options{
		SeedDemoData: cfg.Env == "development",
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	// The key set refreshes in the background until rootCtx is cancelled.
	verifier, err := middleware.NewJWKSVerifier(rootCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize token verifier: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient, verifier)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", "error", err)
		}
		stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
