package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "shortlink", 1)

	token, err := m.GenerateToken(7, "admin", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewManager("secret", "shortlink", 1)
	token, err := m.GenerateToken(1, "admin", "admin")
	require.NoError(t, err)

	_, err = NewManager("other", "shortlink", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "密钥不同应校验失败")

	_, err = NewManager("secret", "someone-else", 1).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "签发方不同应校验失败")

	expired := NewManager("secret", "shortlink", 1)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "过期令牌应校验失败")

	_, err = m.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
