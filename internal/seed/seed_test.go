package seed

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"fakex/internal/models"
	"fakex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_CreatesConsistentData(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{NumUsers: 5, NumPosts: 12, MaxCommentsPerPost: 3, LikeRatio: 0.5, RandSeed: 42})

	summary, err := s.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 12, summary.Posts)
	assert.Equal(t, int64(summary.Users), testutil.Count(t, db, &models.User{}))
	assert.Equal(t, int64(summary.Posts), testutil.Count(t, db, &models.Post{}))
	assert.Equal(t, int64(summary.Comments), testutil.Count(t, db, &models.Comment{}))
	assert.Equal(t, int64(summary.Likes), testutil.Count(t, db, &models.Like{}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.True(t, strings.HasPrefix(u.ExternalID, SubjectPrefix), u.ExternalID)
		assert.True(t, strings.HasSuffix(u.Picture, ".jpg"), u.Picture)
	}

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p.Content), 280)
		assert.NotEmpty(t, strings.TrimSpace(p.Content))
	}
}

func TestFactory_CreateLikeIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, Options{RandSeed: 1})
	ctx := context.Background()

	user, err := f.CreateUser(ctx)
	require.NoError(t, err)
	post, err := f.CreatePost(ctx, user)
	require.NoError(t, err)

	created, err := f.CreateLike(ctx, user, post)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.CreateLike(ctx, user, post)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Like{}))
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{NumUsers: 3, NumPosts: 4, MaxCommentsPerPost: 2, LikeRatio: 1, DryRun: true})

	summary, err := s.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Posts)
	assert.Equal(t, 12, summary.Likes)
	assert.Zero(t, testutil.Count(t, db, &models.User{}))
	assert.Zero(t, testutil.Count(t, db, &models.Post{}))
}

func TestClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "hello")
	testutil.CreateComment(t, db, alice, post, "hi")
	testutil.CreateLike(t, db, alice, post)

	require.NoError(t, ClearAll(context.Background(), db))

	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
		assert.Zero(t, testutil.Count(t, db, model), "%T", model)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
}
