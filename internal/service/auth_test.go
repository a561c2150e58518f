package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

func registerTestUser(t *testing.T, env *testEnv, email string) *AuthResponse {
	t.Helper()

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "a strong password",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	resp := registerTestUser(t, env, "alice@example.com")

	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Test User", resp.User.DisplayName)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)

	// The password hash never leaves the service.
	assert.Empty(t, resp.User.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	registerTestUser(t, env, "alice@example.com")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "another password",
		Name:     "Impostor",
	})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateIdentity)
}

func TestRegister_Validation(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "long enough pw", Name: "X"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.auth.Register(ctx, RegisterRequest{Email: "ok@example.com", Password: "short", Name: "X"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.auth.Register(ctx, RegisterRequest{Email: "ok@example.com", Password: "long enough pw", Name: ""})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	registerTestUser(t, env, "alice@example.com")

	resp, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "a strong password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	registerTestUser(t, env, "alice@example.com")

	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	// Unknown email and wrong password are indistinguishable.
	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_EmailCaseSensitive(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	registerTestUser(t, env, "Alice@example.com")

	_, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "a strong password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	resp := registerTestUser(t, env, "alice@example.com")

	user, err := env.auth.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, err := env.auth.Authenticate(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
