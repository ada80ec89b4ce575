package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/backend/internal/infrastructure/config"
)

func newTestJWTService(accessTTL, refreshTTL time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-long-enough-123456",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: refreshTTL,
		Issuer:                 "tutorlink-test",
	})
}

func TestJWTService_GenerateAndValidateTokenPair(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Email:  "ada@example.com",
		Role:   "student",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID) // JTI is required for blacklisting

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	// A refresh token must not pass access validation and vice versa
	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(-1*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                 "a-completely-different-secret-987654321",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "tutorlink-test",
	})

	pair, err := other.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Email:  "old@example.com",
		Role:   "student",
	})
	require.NoError(t, err)

	// Caller supplies current identity data, not what the old token carried
	newPair, err := svc.RefreshTokenPair(pair.RefreshToken, "new@example.com", "tutor")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "new@example.com", claims.Email)
	assert.Equal(t, "tutor", claims.Role)
}

func TestJWTService_RefreshRejectsAccessToken(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.AccessToken, "", "")
	assert.Error(t, err)
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	svc := newTestJWTService(15*time.Minute, 24*time.Hour)

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}
