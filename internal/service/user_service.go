package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"fakex/internal/models"
	"fakex/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput holds the editable profile fields. Empty means unchanged.
type UpdateProfileInput struct {
	Name    string
	Picture string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetCurrentUser returns the acting user.
func (s *UserService) GetCurrentUser(_ context.Context, viewer Viewer) (*models.User, error) {
	return actingUser(viewer)
}

// UpdateProfile changes the acting user's name and/or picture.
func (s *UserService) UpdateProfile(ctx context.Context, viewer Viewer, in UpdateProfileInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	picture := strings.TrimSpace(in.Picture)

	if name == "" && picture == "" {
		return nil, models.NewValidationError("No data to update")
	}
	if picture != "" && !validPicture(picture) {
		return nil, models.NewValidationError("Invalid picture format")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, models.NewValidationError(fmt.Sprintf("Name must be at most %d characters", maxNameLength))
	}

	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}

	return s.userRepo.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{Name: name, Picture: picture})
}
