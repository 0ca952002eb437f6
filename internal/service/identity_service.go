package service

import (
	"context"
	"strings"

	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/observability"
	"fakex/internal/repository"
)

// IdentityService maps identity provider subjects to local users.
type IdentityService struct {
	userRepo repository.UserRepository
}

// VerifyUserInput carries the verified subject and its profile claims.
type VerifyUserInput struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// VerifyUser returns the user for the subject, creating it on first sight.
// An existing user is returned unchanged. Concurrent first calls for one
// subject converge on a single row.
func (s *IdentityService) VerifyUser(ctx context.Context, in VerifyUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Picture = strings.TrimSpace(in.Picture)
	if in.Name == "" || in.Email == "" || in.Picture == "" {
		return nil, models.NewValidationError("Missing email, name, or picture in JWT")
	}

	existing, err := s.userRepo.GetByExternalID(ctx, in.Subject)
	if err == nil {
		return existing, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	user := &models.User{
		ExternalID: in.Subject,
		Name:       in.Name,
		Email:      in.Email,
		Picture:    in.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.ErrorCode(err) == models.CodeConflict {
			// Another request provisioned the subject between our read and insert.
			return s.userRepo.GetByExternalID(ctx, in.Subject)
		}
		return nil, err
	}

	observability.UsersProvisioned.Inc()
	middleware.Logger.InfoContext(ctx, "user provisioned", "user_id", user.ID)
	return user, nil
}

// Resolve returns the user for subject, or NOT_FOUND "User not found".
func (s *IdentityService) Resolve(ctx context.Context, subject string) (*models.User, error) {
	return s.userRepo.GetByExternalID(ctx, subject)
}
