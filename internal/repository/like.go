package repository

import (
	"context"

	"fakex/internal/models"
	"fakex/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines the interface for like operations.
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, postID, userID uint) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts like and relies on idx_likes_post_user to reject a second like
// by the same user, so concurrent requests cannot both succeed.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) (err error) {
	span, ctx := observability.StartQuery(ctx, "create", "likes")
	defer func() { span.Finish(err) }()

	if err := r.db.WithContext(ctx).Omit("Post", "User").Create(like).Error; err != nil {
		if isUniqueViolation(err) {
			observability.LikeConflicts.Inc()
			return models.NewConflictError("Like already exists", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID uint) (err error) {
	span, ctx := observability.StartQuery(ctx, "delete", "likes")
	defer func() { span.Finish(err) }()

	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Like")
	}
	return nil
}
