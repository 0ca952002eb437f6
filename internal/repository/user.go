package repository

import (
	"context"

	"fakex/internal/models"
	"fakex/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, updates ProfileUpdate) (*models.User, error)
}

// ProfileUpdate lists the user columns a profile edit may change. Empty fields are left untouched.
type ProfileUpdate struct {
	Name    string
	Picture string
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts user. A second user for the same subject fails with CONFLICT.
func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	span, ctx := observability.StartQuery(ctx, "create", "users")
	defer func() { span.Finish(err) }()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (_ *models.User, err error) {
	span, ctx := observability.StartQuery(ctx, "get_by_id", "users")
	defer func() { span.Finish(err) }()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User")
	}
	return &user, nil
}

func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (_ *models.User, err error) {
	span, ctx := observability.StartQuery(ctx, "get_by_subject", "users")
	defer func() { span.Finish(err) }()

	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", externalID).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User")
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, updates ProfileUpdate) (_ *models.User, err error) {
	span, ctx := observability.StartQuery(ctx, "update_profile", "users")
	defer func() { span.Finish(err) }()

	columns := map[string]any{}
	if updates.Name != "" {
		columns["name"] = updates.Name
	}
	if updates.Picture != "" {
		columns["picture"] = updates.Picture
	}

	if len(columns) > 0 {
		result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns)
		if result.Error != nil {
			return nil, models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User")
		}
	}

	return r.GetByID(ctx, id)
}
