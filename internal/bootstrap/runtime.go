// Package bootstrap wires the process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"fakex/internal/cache"
	"fakex/internal/config"
	"fakex/internal/database"
	"fakex/internal/middleware"
	"fakex/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with demo content.
	SeedDemoData bool
}

// InitRuntime connects to the database (applying the schema) and to Redis.
// The Redis client is nil when REDIS_URL is empty or the server is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.Connect(ctx, cfg.RedisURL)

	if opts.SeedDemoData {
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Table("users").Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	summary, err := seed.NewSeeder(db, seed.Options{
		NumUsers:           10,
		NumPosts:           40,
		MaxCommentsPerPost: 4,
		LikeRatio:          0.2,
	}).Seed(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "demo data seeded", "users", summary.Users, "posts", summary.Posts)
	return nil
}
