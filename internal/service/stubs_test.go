package service

import (
	"context"
	"testing"

	"fakex/internal/models"
	"fakex/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	listFn          func(context.Context, int, uint) ([]*models.Post, error)
	listByAuthorFn  func(context.Context, uint, uint) ([]*models.Post, error)
	updateContentFn func(context.Context, uint, string) error
	deleteCascadeFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, viewerID)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID, viewerID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, viewerID)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *postRepoStub) DeletePostCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn:  func(_ context.Context, _, _ uint) ([]*models.Post, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// postOwnedBy returns a getByIDFn serving a single post written by authorID.
func postOwnedBy(postID, authorID uint) func(context.Context, uint, uint) (*models.Post, error) {
	return func(_ context.Context, id, _ uint) (*models.Post, error) {
		if id != postID {
			return nil, models.NewNotFoundError("Post")
		}
		return &models.Post{ID: postID, AuthorID: authorID, Content: "original"}, nil
	}
}

type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByPostFn    func(context.Context, uint) ([]*models.Comment, error)
	updateContentFn func(context.Context, uint, string) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:    func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

type likeRepoStub struct {
	createFn func(context.Context, *models.Like) error
	deleteFn func(context.Context, uint, uint) error
}

func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) error {
	return s.createFn(ctx, like)
}
func (s *likeRepoStub) Delete(ctx context.Context, postID, userID uint) error {
	return s.deleteFn(ctx, postID, userID)
}

type userRepoStub struct {
	createFn          func(context.Context, *models.User) error
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByExternalIDFn func(context.Context, string) (*models.User, error)
	updateProfileFn   func(context.Context, uint, repository.ProfileUpdate) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.getByExternalIDFn(ctx, externalID)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, updates repository.ProfileUpdate) (*models.User, error) {
	return s.updateProfileFn(ctx, id, updates)
}

func authed(id uint) Viewer {
	return Authenticated{User: &models.User{ID: id, Name: "user", ExternalID: "auth0|user"}}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "error: %v", err)
}
