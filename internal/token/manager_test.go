package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestGeneratePair_VerifyRoundTrip(t *testing.T) {
	m, err := NewManager(testSecret)
	require.NoError(t, err)

	pair, err := m.GeneratePair("u1", "a@b.com", "Alice", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	for _, tok := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := m.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "a@b.com", claims.Email)
		assert.Equal(t, "Alice", claims.Name)
		assert.Equal(t, "admin", claims.Role)
		require.NotNil(t, claims.IssuedAt)
		require.NotNil(t, claims.ExpiresAt)
	}
}

func TestVerify_ExpiredAccessToken(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }

	m, err := NewManager(testSecret,
		WithTTL(15*time.Minute, 7*24*time.Hour),
		WithClock(clock),
	)
	require.NoError(t, err)

	pair, err := m.GeneratePair("u1", "a@b.com", "", "")
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken)
	require.NoError(t, err)

	// Past the access TTL, before the refresh TTL.
	current = current.Add(16 * time.Minute)

	_, err = m.Verify(pair.AccessToken)
	require.ErrorIs(t, err, common.ErrTokenExpired)

	_, err = m.Verify(pair.RefreshToken)
	require.NoError(t, err)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	m, err := NewManager(testSecret)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		claims, err := m.Verify(tok)
		require.ErrorIs(t, err, common.ErrInvalidToken)
		assert.Nil(t, claims)
	}
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	m1, err := NewManager(testSecret)
	require.NoError(t, err)
	m2, err := NewManager([]byte("another-secret-another-secret-32"))
	require.NoError(t, err)

	pair, err := m1.GeneratePair("u1", "a@b.com", "", "")
	require.NoError(t, err)

	_, err = m2.Verify(pair.AccessToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestNewManager_EmptySecret(t *testing.T) {
	_, err := NewManager(nil)
	require.Error(t, err)
}
