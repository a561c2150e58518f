package service

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/storage"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// testEnv bundles the services under test with their backing store.
type testEnv struct {
	store      *store.Store
	storage    *storage.Storage
	auth       *AuthService
	books      *BookService
	categories *CategoryService
	stats      *StatsService
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	files, err := storage.New(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	categories := NewCategoryService(s, nil)

	env := &testEnv{
		store:      s,
		storage:    files,
		auth:       NewAuthService(s, tokens, 30*time.Minute, nil),
		books:      NewBookService(s, files, categories, nil),
		categories: categories,
		stats:      NewStatsService(s),
	}

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}
