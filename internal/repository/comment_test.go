package repository

import (
	"context"
	"regexp"
	"testing"

	"fakex/internal/models"
	"fakex/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_DeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE "comments"."id" = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 3)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "topic")

	first := &models.Comment{Content: "first", AuthorID: bob.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Comment{Content: "second", AuthorID: alice.ID, PostID: post.ID}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "bob", list[1].Author.Name)

	require.NoError(t, repo.UpdateContent(ctx, first.ID, "edited"))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, bob.ID, got.Author.ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestCommentRepository_RejectsUnknownPost(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	alice := testutil.CreateUser(t, db, "alice")

	err := repo.Create(context.Background(), &models.Comment{Content: "orphan", AuthorID: alice.ID, PostID: 404})
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
}
