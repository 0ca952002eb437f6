package bootstrap

import (
	"context"
	"testing"

	"fakex/internal/config"
	"fakex/internal/models"
	"fakex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIfEmpty(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{Env: "development"}

	require.NoError(t, seedIfEmpty(context.Background(), cfg, db))
	users := testutil.Count(t, db, &models.User{})
	assert.Equal(t, int64(10), users)
	assert.Equal(t, int64(40), testutil.Count(t, db, &models.Post{}))

	// A populated database is left alone.
	require.NoError(t, seedIfEmpty(context.Background(), cfg, db))
	assert.Equal(t, users, testutil.Count(t, db, &models.User{}))
}

func TestSeedIfEmpty_SkipsProduction(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, seedIfEmpty(context.Background(), &config.Config{Env: "production"}, db))
	assert.Zero(t, testutil.Count(t, db, &models.User{}))
}
