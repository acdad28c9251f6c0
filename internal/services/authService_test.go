package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/store/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	st := memory.New()
	auth := NewAuthService(st, "test-secret")
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.Password)

	tokenString, err := auth.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.Hex(), claims["user_id"])
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuthService(memory.New(), "test-secret")
	ctx := context.Background()

	_, err := auth.Register(ctx, "not-an-email", "long enough password")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = auth.Register(ctx, "alice@example.com", "short")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := NewAuthService(memory.New(), "test-secret")
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice@example.com", "first password")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice@example.com", "second password")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth := NewAuthService(memory.New(), "test-secret")
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice@example.com", "right password")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice@example.com", "wrong password")
	assert.EqualError(t, err, "invalid credentials")

	_, err = auth.Login(ctx, "nobody@example.com", "whatever pass")
	assert.EqualError(t, err, "invalid credentials")
}
