package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats_Empty(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	stats, err := env.stats.Compute(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBooks)
	assert.Zero(t, stats.BooksCompleted)
	assert.Zero(t, stats.TotalReadingTime)
	assert.Zero(t, stats.BooksThisMonth)
	assert.Empty(t, stats.FavoriteCategory)
	assert.Zero(t, stats.CurrentStreak)
}

func TestComputeStats(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	a := uploadTestBook(t, env, "usr-1", "Dune", "Sci-Fi")
	b := uploadTestBook(t, env, "usr-1", "Hyperion", "Sci-Fi")
	uploadTestBook(t, env, "usr-1", "Emma", "Romance")

	// Someone else's library doesn't count.
	uploadTestBook(t, env, "usr-2", "Neuromancer", "Sci-Fi")

	// 0.95 is completed, 0.94 is not.
	_, err := env.books.UpdateProgress(ctx, "usr-1", a.ID, ProgressRequest{Progress: ptrFloat(0.95), ReadingTime: 120})
	require.NoError(t, err)
	_, err = env.books.UpdateProgress(ctx, "usr-1", b.ID, ProgressRequest{Progress: ptrFloat(0.94), ReadingTime: 30})
	require.NoError(t, err)

	stats, err := env.stats.Compute(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 1, stats.BooksCompleted)
	assert.Equal(t, 150, stats.TotalReadingTime)
	assert.Equal(t, 3, stats.BooksThisMonth)
	assert.Equal(t, "Sci-Fi", stats.FavoriteCategory)
	assert.Zero(t, stats.CurrentStreak)
}

func TestComputeStats_FavoriteCategoryTieBreak(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	uploadTestBook(t, env, "usr-1", "Dune", "Sci-Fi")
	uploadTestBook(t, env, "usr-1", "Emma", "Romance")

	stats, err := env.stats.Compute(context.Background(), "usr-1")
	require.NoError(t, err)

	// Equal counts resolve to the lexicographically smallest name.
	assert.Equal(t, "Romance", stats.FavoriteCategory)
}

func TestComputeStats_UncategorizedNotFavorite(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	uploadTestBook(t, env, "usr-1", "Dune", "")
	uploadTestBook(t, env, "usr-1", "Emma", "")
	uploadTestBook(t, env, "usr-1", "Hyperion", "Sci-Fi")

	stats, err := env.stats.Compute(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi", stats.FavoriteCategory)
}
