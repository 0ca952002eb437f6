// Command main runs the database seeder for fakeX.
package main

import (
	"context"
	"flag"
	"log"

	"fakex/internal/config"
	"fakex/internal/database"
	"fakex/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	likeRatio := flag.Float64("likes", 0.2, "Chance that a user likes a given post")
	shouldClean := flag.Bool("clean", false, "Delete all users, posts, comments and likes before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *shouldClean && !*dryRun {
		if err := seed.ClearAll(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	summary, err := seed.NewSeeder(db, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		LikeRatio:          *likeRatio,
		DryRun:             *dryRun,
	}).Seed(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d likes",
		summary.Users, summary.Posts, summary.Comments, summary.Likes)
}
