package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"fakex/internal/models"
	"fakex/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_DeletePostCascade_Order(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeletePostCascade(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeletePostCascade_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.DeletePostCascade(context.Background(), 7)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeletePostCascade_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeletePostCascade(context.Background(), 7)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeletePostCascade_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	doomed := testutil.CreatePost(t, db, alice, "doomed")
	kept := testutil.CreatePost(t, db, alice, "kept")
	testutil.CreateComment(t, db, bob, doomed, "first")
	testutil.CreateComment(t, db, alice, doomed, "second")
	testutil.CreateComment(t, db, bob, kept, "stays")
	testutil.CreateLike(t, db, bob, doomed)
	testutil.CreateLike(t, db, alice, doomed)
	testutil.CreateLike(t, db, bob, kept)

	require.NoError(t, repo.DeletePostCascade(context.Background(), doomed.ID))

	assert.Zero(t, testutil.Count(t, db, &models.Post{}, "id = ?", doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Comment{}, "post_id = ?", doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &models.Like{}, "post_id = ?", doomed.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Comment{}, "post_id = ?", kept.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Like{}, "post_id = ?", kept.ID))
}

func TestPostRepository_ForeignKeysEnforced(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "has children")
	testutil.CreateComment(t, db, alice, post, "child")

	err := db.Delete(&models.Post{}, post.ID).Error
	assert.Error(t, err, "deleting a post with comments outside the cascade must fail")
}

func TestPostRepository_ListAndDetails(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	var posts []*models.Post
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		p := testutil.CreatePost(t, db, alice, "post")
		require.NoError(t, db.Model(p).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		posts = append(posts, p)
	}
	newest := posts[6]
	testutil.CreateLike(t, db, bob, newest)
	testutil.CreateLike(t, db, alice, newest)
	testutil.CreateComment(t, db, bob, newest, "nice")

	t.Run("anonymous capped and unliked", func(t *testing.T) {
		got, err := repo.List(ctx, 5, 0)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, newest.ID, got[0].ID)
		assert.Equal(t, int64(2), got[0].LikesCount)
		assert.Equal(t, int64(1), got[0].CommentsCount)
		assert.Equal(t, "alice", got[0].Author.Name)
		for _, p := range got {
			assert.False(t, p.IsLikedByUser)
		}
	})

	t.Run("authenticated uncapped with liked flag", func(t *testing.T) {
		got, err := repo.List(ctx, 0, bob.ID)
		require.NoError(t, err)
		require.Len(t, got, 7)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt), "feed must be newest first")
		}
		assert.True(t, got[0].IsLikedByUser)
		assert.False(t, got[1].IsLikedByUser)
	})

	t.Run("by author", func(t *testing.T) {
		got, err := repo.ListByAuthor(ctx, bob.ID, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = repo.ListByAuthor(ctx, alice.ID, alice.ID)
		require.NoError(t, err)
		assert.Len(t, got, 7)
		assert.True(t, got[0].IsLikedByUser)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, newest.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, got.IsLikedByUser)
		assert.Equal(t, int64(2), got.LikesCount)

		_, err = repo.GetByID(ctx, 9999, bob.ID)
		assert.True(t, models.IsNotFound(err))
	})
}

func TestPostRepository_OrderTieBreaksOnID(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	alice := testutil.CreateUser(t, db, "alice")

	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := testutil.CreatePost(t, db, alice, "first")
	second := testutil.CreatePost(t, db, alice, "second")
	require.NoError(t, db.Model(&models.Post{}).Where("id IN ?", []uint{first.ID, second.ID}).
		UpdateColumn("created_at", stamp).Error)

	got, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestPostRepository_UpdateContent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "before")

	require.NoError(t, repo.UpdateContent(context.Background(), post.ID, "after"))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "after", reloaded.Content)
	assert.Equal(t, alice.ID, reloaded.AuthorID)

	err := repo.UpdateContent(context.Background(), 9999, "x")
	assert.True(t, models.IsNotFound(err))
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}
