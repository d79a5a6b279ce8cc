package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/client/storage"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

type fixture struct {
	ctrl    *Controller
	auth    services.AuthService
	limiter *ratelimit.Limiter
	tokens  *token.Manager
	clock   *testClock
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repos, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.DB.Close() })

	clock := &testClock{current: time.Now()}

	tokens, err := token.NewManager(cryptox.PadSecret([]byte("signing")), token.WithClock(clock.now))
	require.NoError(t, err)

	api := apiclient.NewMemoryClient([]apiclient.Account{
		{
			User:     models.User{ID: "u-1", Email: "admin@example.com", Name: "Admin", Role: "admin"},
			Password: "Admin123!",
		},
	})

	log := logging.NewSlogLogger(slog.Default())
	auth := services.NewAuthService(api, repos.Secrets, tokens, cryptox.PadSecret([]byte("encryption")), log)
	limiter := ratelimit.New(repos.DB, ratelimit.WithClock(clock.now))

	return &fixture{
		ctrl:    NewController(auth, limiter, tokens, log),
		auth:    auth,
		limiter: limiter,
		tokens:  tokens,
		clock:   clock,
	}
}

func TestController_InitialState(t *testing.T) {
	f := setup(t)
	assert.Equal(t, StateBootstrapping, f.ctrl.State())
}

func TestController_Bootstrap_NoPersistedSession(t *testing.T) {
	f := setup(t)

	f.ctrl.Bootstrap(context.Background())

	assert.Equal(t, StateUnauthenticated, f.ctrl.State())
	assert.Nil(t, f.ctrl.CurrentUser())
}

func TestController_Bootstrap_ValidPersistedSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	require.NoError(t, f.auth.SaveSession(ctx, session))

	f.ctrl.Bootstrap(ctx)

	assert.Equal(t, StateAuthenticated, f.ctrl.State())
	require.NotNil(t, f.ctrl.CurrentUser())
	assert.Equal(t, "admin@example.com", f.ctrl.CurrentUser().Email)
}

func TestController_Bootstrap_ExpiredTokenPurges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	require.NoError(t, f.auth.SaveSession(ctx, session))

	f.clock.advance(16 * time.Minute)

	f.ctrl.Bootstrap(ctx)

	assert.Equal(t, StateUnauthenticated, f.ctrl.State())
	assert.False(t, f.auth.IsAuthenticated(ctx))
}

func TestController_Login_Success(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Login(ctx, "admin@example.com", "Admin123!"))

	assert.Equal(t, StateAuthenticated, f.ctrl.State())
	assert.True(t, f.auth.IsAuthenticated(ctx))

	session := f.ctrl.Session()
	require.NotNil(t, session)
	_, err := f.tokens.Verify(session.AccessToken)
	assert.NoError(t, err)
}

func TestController_Login_InvalidInputSkipsLimiter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// Way more bad-input attempts than the limiter would allow.
	for i := 0; i < 10; i++ {
		err := f.ctrl.Login(ctx, "a@b.com", "short")
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	// No attempt was counted, so a real login still goes through.
	require.NoError(t, f.ctrl.Login(ctx, "admin@example.com", "Admin123!"))
	assert.Equal(t, StateAuthenticated, f.ctrl.State())
}

func TestController_Login_WrongPasswordThenBlocked(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		err := f.ctrl.Login(ctx, "admin@example.com", "Wrong123!")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials, "attempt %d", i)
	}

	err := f.ctrl.Login(ctx, "admin@example.com", "Wrong123!")
	var lerr *ratelimit.LimitError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, common.ErrRateLimited)
	assert.GreaterOrEqual(t, lerr.WaitMinutes, 1)

	// Even the correct password is rejected while blocked, without
	// reaching the credential check.
	err = f.ctrl.Login(ctx, "admin@example.com", "Admin123!")
	assert.ErrorIs(t, err, common.ErrRateLimited)
	assert.Equal(t, StateUnauthenticated, f.ctrl.State())
}

func TestController_Login_SuccessResetsLimiter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		err := f.ctrl.Login(ctx, "admin@example.com", "Wrong123!")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	require.NoError(t, f.ctrl.Login(ctx, "admin@example.com", "Admin123!"))

	// A fresh window: four more failures before the next denial.
	f.ctrl.Logout(ctx)
	for i := 1; i <= 4; i++ {
		err := f.ctrl.Login(ctx, "admin@example.com", "Wrong123!")
		require.ErrorIs(t, err, common.ErrInvalidCredentials, "attempt %d", i)
		require.False(t, errors.Is(err, common.ErrRateLimited), "attempt %d", i)
	}
}

func TestController_Logout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Login(ctx, "admin@example.com", "Admin123!"))
	require.Equal(t, StateAuthenticated, f.ctrl.State())

	f.ctrl.Logout(ctx)

	assert.Equal(t, StateUnauthenticated, f.ctrl.State())
	assert.Nil(t, f.ctrl.Session())
	assert.False(t, f.auth.IsAuthenticated(ctx))
}

func TestController_StateString(t *testing.T) {
	assert.Equal(t, "bootstrapping", StateBootstrapping.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
}
