package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "test-password-123"

	hashedPassword, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)

	// Same password produces different hashes (due to salt).
	hashedPassword2, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, hashedPassword, hashedPassword2)
}

func TestVerifyPassword(t *testing.T) {
	password := "test-password-123"

	hashedPassword, err := HashPassword(password)
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword(hashedPassword, password))
	assert.Error(t, VerifyPassword(hashedPassword, "wrong-password"))
	assert.Error(t, VerifyPassword("invalid-hash", password))
}

func TestGenerateSecretKey(t *testing.T) {
	secretKey, err := GenerateSecretKey()
	require.NoError(t, err)
	assert.Len(t, secretKey, 64) // 32 bytes * 2 (hex encoding)

	secretKey2, err := GenerateSecretKey()
	require.NoError(t, err)
	assert.NotEqual(t, secretKey, secretKey2)
}

func TestAuthenticateUser(t *testing.T) {
	svc := setupServices(t)

	user, err := svc.Users.CreateUser(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	authenticated, err := svc.Auth.AuthenticateUser(context.Background(), "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = svc.Auth.AuthenticateUser(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Auth.AuthenticateUser(context.Background(), "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := setupServices(t)

	user, err := svc.Users.CreateUser(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	token, err := svc.Auth.GenerateJWTToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := svc.Auth.AuthenticateJWTToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed.ID)

	_, err = svc.Auth.AuthenticateJWTToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidJWT)
}
