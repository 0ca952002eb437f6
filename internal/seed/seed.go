package seed

import (
	"context"
	"fmt"

	"fakex/internal/middleware"
	"fakex/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers int
	NumPosts int
	// MaxCommentsPerPost bounds the random number of comments on each post.
	MaxCommentsPerPost int
	// LikeRatio is the chance, 0 to 1, that a given user likes a given post.
	LikeRatio float64
	MaxDays   int
	RandSeed  int64
	DryRun    bool
}

// Summary counts what a Seed run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seeder fills the database with demo users, posts, comments and likes.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.MaxCommentsPerPost < 0 {
		opts.MaxCommentsPerPost = 0
	}
	if opts.LikeRatio < 0 || opts.LikeRatio > 1 {
		opts.LikeRatio = 0.2
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Seed creates NumUsers users and NumPosts posts spread across them, then
// adds comments and likes.
func (s *Seeder) Seed(ctx context.Context) (*Summary, error) {
	log := middleware.Logger
	log.InfoContext(ctx, "seeding database", "users", s.opts.NumUsers, "posts", s.opts.NumPosts)

	summary := &Summary{}
	if s.opts.NumUsers <= 0 {
		return summary, nil
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)

	faker := s.factory.faker
	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[faker.Number(0, len(users)-1)]
		post, err := s.factory.CreatePost(ctx, author)
		if err != nil {
			return summary, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	summary.Posts = len(posts)

	for _, post := range posts {
		comments := 0
		if s.opts.MaxCommentsPerPost > 0 {
			comments = faker.Number(0, s.opts.MaxCommentsPerPost)
		}
		for j := 0; j < comments; j++ {
			author := users[faker.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(ctx, author, post); err != nil {
				return summary, fmt.Errorf("create comment: %w", err)
			}
			summary.Comments++
		}

		for _, user := range users {
			if faker.Float64Range(0, 1) >= s.opts.LikeRatio {
				continue
			}
			created, err := s.factory.CreateLike(ctx, user, post)
			if err != nil {
				return summary, fmt.Errorf("create like: %w", err)
			}
			if created {
				summary.Likes++
			}
		}
	}

	log.InfoContext(ctx, "seeding completed",
		"users", summary.Users, "posts", summary.Posts,
		"comments", summary.Comments, "likes", summary.Likes)
	return summary, nil
}

// ClearAll removes every like, comment, post and user in one transaction,
// children first so foreign keys hold throughout.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
