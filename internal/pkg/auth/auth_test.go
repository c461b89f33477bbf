// internal/pkg/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/shop-backend/internal/config"
)

func authConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Shop API"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-signing-tokens-only",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4}, // Minimum cost keeps tests fast
	}
}

func TestValidatePassword(t *testing.T) {
	pm := NewPasswordManager(authConfig())

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Passw0rd", false},
		{"too short", "Pa1x", true},
		{"no uppercase", "password1", true},
		{"no lowercase", "PASSWORD1", true},
		{"no number", "Password", true},
		{"repeating run", "Passs0rd", true},
		{"double characters allowed", "GoodDay12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pm.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	pm := NewPasswordManager(authConfig())

	hash, err := pm.HashPassword("Secur3pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Secur3pass", hash)

	assert.NoError(t, pm.VerifyPassword("Secur3pass", hash))
	assert.Error(t, pm.VerifyPassword("Wr0ngpass", hash))
}

func TestHashPassword_RejectsWeakPassword(t *testing.T) {
	pm := NewPasswordManager(authConfig())

	_, err := pm.HashPassword("weak")
	assert.Error(t, err)
}

func TestJWT_AccessTokenRoundTrip(t *testing.T) {
	jm := NewJWTManager(authConfig())

	token, err := jm.GenerateAccessToken(42, "user@example.com", true)
	require.NoError(t, err)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestJWT_TokenTypeIsEnforced(t *testing.T) {
	jm := NewJWTManager(authConfig())

	refresh, err := jm.GenerateRefreshToken(42, "user@example.com")
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := jm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin, "refresh tokens never carry admin status")
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	jm := NewJWTManager(authConfig())

	token, err := jm.GenerateAccessToken(1, "user@example.com", false)
	require.NoError(t, err)

	otherCfg := authConfig()
	otherCfg.JWT.Secret = "a-completely-different-signing-secret"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc123"))
}
