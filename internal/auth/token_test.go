package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainrot-market/market-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleModerator)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleModerator, claims.Role)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22pass")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22pass", hash)

	assert.NoError(t, ComparePassword(hash, "hunter22pass"))
	assert.Error(t, ComparePassword(hash, "wrongpassword"))
}
