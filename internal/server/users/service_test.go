package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

func newTestService(t *testing.T) (*Service, *refreshtokens.MemoryRepository) {
	t.Helper()

	tokens, err := token.NewManager(cryptox.PadSecret([]byte("signing")))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	refreshRepo := refreshtokens.NewMemoryRepository()
	return NewService(NewMemoryRepository(), refreshRepo, tokens, cfg), refreshRepo
}

func registerTestUser(t *testing.T, s *Service) *User {
	t.Helper()
	user, err := s.Register(context.Background(), "admin@example.com", "Admin", "admin", "Admin123!")
	require.NoError(t, err)
	return user
}

func TestService_Register(t *testing.T) {
	s, _ := newTestService(t)

	user := registerTestUser(t, s)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NotEqual(t, []byte("Admin123!"), user.PasswordHash)
}

func TestService_Login(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, s)

	user, pair, err := s.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := s.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestService_Login_UniformUnauthorized(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, s)

	_, _, err := s.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, _, err = s.Login(ctx, "nobody@example.com", "Admin123!")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestService_Refresh_Rotates(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, s)

	_, pair, err := s.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)

	rotated, err := s.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old token is spent.
	_, err = s.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestService_Refresh_Expired(t *testing.T) {
	s, refreshRepo := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, s)

	require.NoError(t, refreshRepo.Create(ctx, user.ID, "stale-token", -time.Minute))

	_, err := s.Refresh(ctx, "stale-token")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestService_Logout_RevokesTokens(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, s)

	_, pair, err := s.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, user.ID))

	_, err = s.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}
