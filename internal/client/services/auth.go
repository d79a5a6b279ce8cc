// Package services contains the application services for the authkeeper
// client. This file defines the authentication service: credential login
// against the identity boundary, persisted-session handling, and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apiclient "github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/secrets"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

// AuthService defines the login core operations exposed to the session
// controller.
//
// Contract:
//   - Login: validate credentials against the identity boundary and mint
//     the local token pair.
//   - SaveSession / CurrentUser: encrypted persistence of the session.
//   - Logout: best-effort remote notification plus local cleanup; always
//     succeeds locally.
//   - IsAuthenticated: cheap marker check for UI gating, not a security
//     boundary.
//
// All methods honor context cancellation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	CurrentUser(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
	ClearLocalSession(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	Close() error
}

// authService is the concrete AuthService backed by the identity boundary
// client and the local secrets store.
type authService struct {
	api              apiclient.Client
	secrets          secrets.Repository
	tokens           *token.Manager
	encryptionSecret []byte
	log              logging.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(api apiclient.Client, repo secrets.Repository, tokens *token.Manager, encryptionSecret []byte, log logging.Logger) AuthService {
	return &authService{
		api:              api,
		secrets:          repo,
		tokens:           tokens,
		encryptionSecret: encryptionSecret,
		log:              log,
	}
}

// Login trims both inputs, validates the credentials against the identity
// boundary, and on success mints the token pair for the sanitized user
// record. A mismatch or unknown user yields common.ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			return nil, common.ErrInvalidCredentials
		case errors.Is(err, apiclient.ErrRateLimited):
			return nil, common.ErrRateLimited
		case errors.Is(err, apiclient.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
		default:
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	pair, err := a.tokens.GeneratePair(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &models.Session{
		User:         *user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// SaveSession encrypts the session payload and persists it together with
// the session marker. The caller decides whether an encryption failure is
// fatal; the controller logs it and keeps the session in memory.
func (a *authService) SaveSession(ctx context.Context, session *models.Session) error {
	blob, err := cryptox.Encrypt(session, a.encryptionSecret)
	if err != nil {
		return fmt.Errorf("encrypting session: %w", err)
	}

	if err := a.secrets.Set(ctx, common.SessionBlobKey, []byte(blob)); err != nil {
		return err
	}
	return a.secrets.Set(ctx, common.SessionMarkerKey, []byte("1"))
}

// CurrentUser reads and decrypts the persisted session blob. An absent
// blob returns (nil, nil); a corrupt one is purged, logged, and also
// treated as "no prior session".
func (a *authService) CurrentUser(ctx context.Context) (*models.Session, error) {
	blob, err := a.secrets.Get(ctx, common.SessionBlobKey)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}

	var session models.Session
	if err := cryptox.Decrypt(string(blob), a.encryptionSecret, &session); err != nil {
		a.log.Warn(ctx, "discarding unreadable session blob", "error", err.Error())
		if err := a.ClearLocalSession(ctx); err != nil {
			a.log.Error(ctx, "purging session blob", "error", err.Error())
		}
		return nil, nil
	}

	return &session, nil
}

// Logout notifies the identity endpoint and wipes the local session.
// A failed notification is logged and swallowed; logout always succeeds
// locally.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout notification failed", "error", err.Error())
	}
	return a.ClearLocalSession(ctx)
}

// ClearLocalSession removes the persisted blob and marker.
func (a *authService) ClearLocalSession(ctx context.Context) error {
	if err := a.secrets.Delete(ctx, common.SessionBlobKey); err != nil {
		return err
	}
	return a.secrets.Delete(ctx, common.SessionMarkerKey)
}

// IsAuthenticated reports whether the session marker is present.
func (a *authService) IsAuthenticated(ctx context.Context) bool {
	marker, err := a.secrets.Get(ctx, common.SessionMarkerKey)
	if err != nil {
		return false
	}
	return len(marker) > 0
}

// Close releases resources held by the boundary client.
func (a *authService) Close() error {
	return a.api.Close()
}
