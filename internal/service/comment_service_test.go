package service

import (
	"context"
	"testing"

	"fakex/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(comments *commentRepoStub, posts *postRepoStub) *CommentService {
	return NewCommentService(comments, posts, nil, 280)
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		viewer   Viewer
		postID   uint
		content  string
		wantCode string
	}{
		{"created", authed(2), 10, "nice post", ""},
		{"missing post", authed(2), 99, "nice post", models.CodeNotFound},
		{"blank", authed(2), 10, " ", models.CodeValidation},
		{"anonymous", Anonymous{}, 10, "hi", models.CodeNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			posts := noopPostRepo()
			posts.getByIDFn = postOwnedBy(10, 1)
			comments := noopCommentRepo()
			var stored *models.Comment
			comments.createFn = func(_ context.Context, c *models.Comment) error {
				c.ID = 5
				stored = c
				return nil
			}

			comment, err := newCommentService(comments, posts).CreateComment(context.Background(), tt.viewer,
				CreateCommentInput{PostID: tt.postID, Content: tt.content})
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				assert.Nil(t, stored)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(2), stored.AuthorID)
			assert.Equal(t, uint(10), stored.PostID)
			assert.Equal(t, uint(2), comment.Author.ID)
		})
	}
}

func TestCommentService_ListComments_PostMustExist(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.getByIDFn = postOwnedBy(10, 1)
	comments := noopCommentRepo()
	comments.listByPostFn = func(_ context.Context, postID uint) ([]*models.Comment, error) {
		return []*models.Comment{{ID: 1, PostID: postID}}, nil
	}
	svc := newCommentService(comments, posts)

	list, err := svc.ListComments(context.Background(), authed(3), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListComments(context.Background(), authed(3), 11)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_UpdateAndDelete_Ownership(t *testing.T) {
	t.Parallel()

	// Comment 7 is written by user 2 on a post authored by user 1.
	commentByTwo := func(_ context.Context, id uint) (*models.Comment, error) {
		if id != 7 {
			return nil, models.NewNotFoundError("Comment")
		}
		return &models.Comment{ID: 7, AuthorID: 2, PostID: 10}, nil
	}

	tests := []struct {
		name      string
		viewer    Viewer
		commentID uint
		wantCode  string
	}{
		{"comment author", authed(2), 7, ""},
		{"post author is not comment author", authed(1), 7, models.CodeForbidden},
		{"missing comment", authed(2), 8, models.CodeNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			comments := noopCommentRepo()
			comments.getByIDFn = commentByTwo
			mutated := 0
			comments.updateContentFn = func(_ context.Context, _ uint, _ string) error {
				mutated++
				return nil
			}
			comments.deleteFn = func(_ context.Context, _ uint) error {
				mutated++
				return nil
			}
			svc := newCommentService(comments, noopPostRepo())

			_, updateErr := svc.UpdateComment(context.Background(), tt.viewer, UpdateCommentInput{CommentID: tt.commentID, Content: "edit"})
			deleteErr := svc.DeleteComment(context.Background(), tt.viewer, tt.commentID)

			if tt.wantCode == "" {
				assert.NoError(t, updateErr)
				assert.NoError(t, deleteErr)
				assert.Equal(t, 2, mutated)
				return
			}
			assertCode(t, updateErr, tt.wantCode)
			assertCode(t, deleteErr, tt.wantCode)
			assert.Zero(t, mutated)
		})
	}
}
