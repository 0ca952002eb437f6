package service

import (
	"context"
	"errors"
	"testing"

	"fakex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVerifyInput() VerifyUserInput {
	return VerifyUserInput{
		Subject: "auth0|abc",
		Name:    "Ada",
		Email:   "ada@example.com",
		Picture: "https://cdn.example.com/ada.png",
	}
}

func TestIdentityService_VerifyUser_MissingClaims(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*VerifyUserInput)
	}{
		{"missing name", func(in *VerifyUserInput) { in.Name = "" }},
		{"missing email", func(in *VerifyUserInput) { in.Email = " " }},
		{"missing picture", func(in *VerifyUserInput) { in.Picture = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &userRepoStub{
				getByExternalIDFn: func(context.Context, string) (*models.User, error) {
					t.Fatal("repository must not be reached")
					return nil, nil
				},
			}
			in := validVerifyInput()
			tt.mutate(&in)

			_, err := NewIdentityService(repo).VerifyUser(context.Background(), in)
			assertCode(t, err, models.CodeValidation)
			assert.Equal(t, "Missing email, name, or picture in JWT", err.Error())
		})
	}
}

func TestIdentityService_VerifyUser_ExistingUnchanged(t *testing.T) {
	t.Parallel()
	existing := &models.User{ID: 1, ExternalID: "auth0|abc", Name: "Old Name", Email: "old@example.com", Picture: "https://x/old.png"}
	repo := &userRepoStub{
		getByExternalIDFn: func(_ context.Context, sub string) (*models.User, error) {
			assert.Equal(t, "auth0|abc", sub)
			return existing, nil
		},
		createFn: func(context.Context, *models.User) error {
			t.Fatal("existing users must not be recreated")
			return nil
		},
	}

	user, err := NewIdentityService(repo).VerifyUser(context.Background(), validVerifyInput())
	require.NoError(t, err)
	assert.Equal(t, "Old Name", user.Name)
}

func TestIdentityService_VerifyUser_Creates(t *testing.T) {
	t.Parallel()
	var created *models.User
	repo := &userRepoStub{
		getByExternalIDFn: func(context.Context, string) (*models.User, error) {
			return nil, models.NewNotFoundError("User")
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 12
			created = u
			return nil
		},
	}

	user, err := NewIdentityService(repo).VerifyUser(context.Background(), validVerifyInput())
	require.NoError(t, err)
	assert.Equal(t, uint(12), user.ID)
	assert.Equal(t, "auth0|abc", created.ExternalID)
	assert.Equal(t, "ada@example.com", created.Email)
}

func TestIdentityService_VerifyUser_ConcurrentInsertRereads(t *testing.T) {
	t.Parallel()
	winner := &models.User{ID: 3, ExternalID: "auth0|abc", Name: "Ada"}
	lookups := 0
	repo := &userRepoStub{
		getByExternalIDFn: func(context.Context, string) (*models.User, error) {
			lookups++
			if lookups == 1 {
				return nil, models.NewNotFoundError("User")
			}
			return winner, nil
		},
		createFn: func(context.Context, *models.User) error {
			return models.NewConflictError("User already exists", errors.New("23505"))
		},
	}

	user, err := NewIdentityService(repo).VerifyUser(context.Background(), validVerifyInput())
	require.NoError(t, err)
	assert.Equal(t, winner, user)
	assert.Equal(t, 2, lookups)
}

func TestIdentityService_VerifyUser_LookupFailure(t *testing.T) {
	t.Parallel()
	repo := &userRepoStub{
		getByExternalIDFn: func(context.Context, string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("db down"))
		},
	}

	_, err := NewIdentityService(repo).VerifyUser(context.Background(), validVerifyInput())
	assertCode(t, err, models.CodeInternal)
}

func TestIdentityService_Resolve(t *testing.T) {
	t.Parallel()
	repo := &userRepoStub{
		getByExternalIDFn: func(_ context.Context, sub string) (*models.User, error) {
			if sub == "auth0|known" {
				return &models.User{ID: 1}, nil
			}
			return nil, models.NewNotFoundError("User")
		},
	}
	svc := NewIdentityService(repo)

	user, err := svc.Resolve(context.Background(), "auth0|known")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Resolve(context.Background(), "auth0|unknown")
	assertCode(t, err, models.CodeNotFound)
	assert.Equal(t, "User not found", err.Error())
}
