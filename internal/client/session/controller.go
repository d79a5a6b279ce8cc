// Package session holds the client session state machine. The controller
// owns the lifecycle around the auth service: bootstrap from persisted
// state, rate-limit-guarded login, logout.
package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

// State is the controller lifecycle state.
type State int

const (
	// StateBootstrapping is the initial state while a persisted session
	// is being restored.
	StateBootstrapping State = iota
	// StateAuthenticated means a verified session is active.
	StateAuthenticated
	// StateUnauthenticated means no session is active.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError reports input problems found before any credential
// check or rate-limit accounting. errors.Is(err, common.ErrInvalidCredentials)
// matches it.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrInvalidCredentials
}

// Controller is the session state machine. State transitions are
// mutex-guarded; concurrent login/logout resolve last-writer-wins.
type Controller struct {
	auth    services.AuthService
	limiter *ratelimit.Limiter
	tokens  *token.Manager
	log     logging.Logger

	mu      sync.Mutex
	state   State
	session *models.Session
}

// NewController returns a controller in StateBootstrapping.
func NewController(auth services.AuthService, limiter *ratelimit.Limiter, tokens *token.Manager, log logging.Logger) *Controller {
	return &Controller{
		auth:    auth,
		limiter: limiter,
		tokens:  tokens,
		log:     log,
		state:   StateBootstrapping,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the active session, or nil when unauthenticated.
func (c *Controller) Session() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// CurrentUser returns the authenticated user, or nil.
func (c *Controller) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	user := c.session.User
	return &user
}

// Bootstrap restores a persisted session. Any failure along the way,
// missing blob, unreadable blob, expired or tampered token, lands in
// StateUnauthenticated with local state purged. Bootstrap never returns
// a user-facing error.
func (c *Controller) Bootstrap(ctx context.Context) {
	session, err := c.auth.CurrentUser(ctx)
	if err != nil {
		c.log.Error(ctx, "reading persisted session", "error", err.Error())
		c.setUnauthenticated()
		return
	}
	if session == nil {
		c.setUnauthenticated()
		return
	}

	if _, err := c.tokens.Verify(session.AccessToken); err != nil {
		c.log.Info(ctx, "persisted session no longer valid", "error", err.Error())
		if err := c.auth.ClearLocalSession(ctx); err != nil {
			c.log.Error(ctx, "purging persisted session", "error", err.Error())
		}
		c.setUnauthenticated()
		return
	}

	c.setAuthenticated(session)
}

// Login runs the full login sequence: input validation, rate limiter,
// credential check, persistence, limiter reset.
//
// Invalid input fails before the limiter is consulted and consumes no
// attempt. A limiter denial returns *ratelimit.LimitError and never
// reaches the credential check. A failed credential check leaves the
// controller unauthenticated with the attempt already counted.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if violations := validateInput(email, password); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	result, err := c.limiter.Check(ctx, email)
	if err != nil {
		// A broken attempt store must not lock the user out.
		c.log.Error(ctx, "rate limiter unavailable, allowing attempt", "error", err.Error())
	} else if !result.Allowed {
		return &ratelimit.LimitError{
			WaitMinutes:       result.WaitMinutes,
			RemainingAttempts: result.RemainingAttempts,
		}
	}

	session, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := c.auth.SaveSession(ctx, session); err != nil {
		// The session stays usable in memory for this run.
		c.log.Warn(ctx, "persisting session failed", "error", err.Error())
	}

	if err := c.limiter.Reset(ctx, email); err != nil {
		c.log.Warn(ctx, "resetting rate limit", "error", err.Error())
	}

	c.setAuthenticated(session)
	return nil
}

// Logout ends the session. The local transition to StateUnauthenticated
// is unconditional regardless of remote or storage failures.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.auth.Logout(ctx); err != nil {
		c.log.Warn(ctx, "clearing persisted session", "error", err.Error())
	}
	c.setUnauthenticated()
}

func (c *Controller) setAuthenticated(session *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateAuthenticated
	c.session = session
}

func (c *Controller) setUnauthenticated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUnauthenticated
	c.session = nil
}

func validateInput(email, password string) []string {
	var violations []string
	if !emailPattern.MatchString(email) {
		violations = append(violations, "email address is not valid")
	}
	violations = append(violations, cryptox.ValidatePassword(password)...)
	return violations
}
