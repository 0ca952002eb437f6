// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"fakex/internal/database"
	"fakex/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewSQLiteDB returns an isolated in-memory database with the full schema and
// foreign keys enforced. One connection keeps every query on the same database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user whose subject is derived from name.
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalID: "auth0|" + name,
		Name:       name,
		Email:      name + "@example.com",
		Picture:    "https://cdn.example.com/" + name + ".png",
	}
	mustCreate(t, db, user)
	return user
}

// CreatePost inserts a post by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{Content: content, AuthorID: author.ID}
	mustCreate(t, db, post)
	return post
}

// CreateComment inserts a comment by author on post.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: content, AuthorID: author.ID, PostID: post.ID}
	mustCreate(t, db, comment)
	return comment
}

// CreateLike inserts a like by user on post.
func CreateLike(t testing.TB, db *gorm.DB, user *models.User, post *models.Post) *models.Like {
	t.Helper()
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	mustCreate(t, db, like)
	return like
}

// Count returns the number of rows in model's table matching the optional condition.
func Count(t testing.TB, db *gorm.DB, model any, query ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(query) > 0 {
		q = q.Where(query[0], query[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func mustCreate(t testing.TB, db *gorm.DB, value any) {
	t.Helper()
	if err := db.WithContext(context.Background()).Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}
