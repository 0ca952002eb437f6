package repository

import (
	"context"

	"fakex/internal/models"
	"fakex/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	span, ctx := observability.StartQuery(ctx, "create", "comments")
	defer func() { span.Finish(err) }()

	if err := r.db.WithContext(ctx).Omit("Author", "Post").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (_ *models.Comment, err error) {
	span, ctx := observability.StartQuery(ctx, "get_by_id", "comments")
	defer func() { span.Finish(err) }()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment")
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) (_ []*models.Comment, err error) {
	span, ctx := observability.StartQuery(ctx, "list_by_post", "comments")
	defer func() { span.Finish(err) }()

	var comments []*models.Comment
	err = r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) (err error) {
	span, ctx := observability.StartQuery(ctx, "update_content", "comments")
	defer func() { span.Finish(err) }()

	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) (err error) {
	span, ctx := observability.StartQuery(ctx, "delete", "comments")
	defer func() { span.Finish(err) }()

	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}
