package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

func newTestUser(id, email string) *domain.User {
	u := &domain.User{
		Timestamps: domain.Timestamps{
			ID: id,
		},
		Email:        email,
		PasswordHash: "$argon2id$fake",
		DisplayName:  "Test User",
	}
	u.InitTimestamps()
	return u
}

func TestCreateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := newTestUser("usr-1", "alice@example.com")
	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	retrieved, err := s.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, user.Email, retrieved.Email)
	assert.Equal(t, user.PasswordHash, retrieved.PasswordHash)
	assert.Equal(t, user.DisplayName, retrieved.DisplayName)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-1", "alice@example.com")))

	err := s.CreateUser(ctx, newTestUser("usr-2", "alice@example.com"))
	assert.ErrorIs(t, err, ErrEmailExists)

	// The failed creation must not have written anything.
	_, err = s.GetUser(ctx, "usr-2")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser_EmailCaseSensitive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-1", "Alice@example.com")))

	// Differs only in case: a distinct identity, so creation succeeds.
	require.NoError(t, s.CreateUser(ctx, newTestUser("usr-2", "alice@example.com")))

	upper, err := s.GetUserByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", upper.ID)

	lower, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "usr-2", lower.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetUser(context.Background(), "usr-missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
