// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"fakex/internal/models"
	"fakex/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// viewerID 0 means no acting user; IsLikedByUser is then always false.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit int, viewerID uint) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, viewerID uint) ([]*models.Post, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	DeletePostCascade(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	span, ctx := observability.StartQuery(ctx, "create", "posts")
	defer func() { span.Finish(err) }()

	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (_ *models.Post, err error) {
	span, ctx := observability.StartQuery(ctx, "get_by_id", "posts")
	defer func() { span.Finish(err) }()

	var post models.Post
	err = r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post")
	}
	return &post, nil
}

// List returns the newest posts first. limit <= 0 returns every post.
func (r *postRepository) List(ctx context.Context, limit int, viewerID uint) (_ []*models.Post, err error) {
	span, ctx := observability.StartQuery(ctx, "list", "posts")
	defer func() { span.Finish(err) }()

	q := r.applyPostDetails(r.db.WithContext(ctx), viewerID).Preload("Author")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var posts []*models.Post
	if err := newestFirst(q).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, viewerID uint) (_ []*models.Post, err error) {
	span, ctx := observability.StartQuery(ctx, "list_by_author", "posts")
	defer func() { span.Finish(err) }()

	var posts []*models.Post
	err = newestFirst(r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("posts.author_id = ?", authorID)).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id uint, content string) (err error) {
	span, ctx := observability.StartQuery(ctx, "update_content", "posts")
	defer func() { span.Finish(err) }()

	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

// DeletePostCascade removes the post's likes, then its comments, then the post
// in one transaction. Either all three go or none do.
func (r *postRepository) DeletePostCascade(ctx context.Context, id uint) (err error) {
	span, ctx := observability.StartQuery(ctx, "delete_cascade", "posts")
	defer func() { span.Finish(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post")
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

// applyPostDetails selects the post columns plus comment and like counts, and
// whether viewerID liked each post, in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	const counts = "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID == 0 {
		return db.Model(&models.Post{}).Select(counts + ", false AS is_liked_by_user")
	}
	return db.Model(&models.Post{}).Select(
		counts+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked_by_user",
		viewerID,
	)
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").Order("posts.id DESC")
}
