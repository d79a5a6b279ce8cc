// Package cli is the interactive client: a small REPL over the session
// controller with login, status and logout commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	apiclient "github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/client/storage"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

type App struct {
	config *config.Config
	ctrl   *session.Controller
	repos  *storage.Repositories
	reader *bufio.Reader
	out    *os.File
	log    logging.Logger
}

// NewApp wires the client: sqlite storage, the HTTP identity client, the
// token manager, the rate limiter, the auth service and the session
// controller.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	repos, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	tokens, err := token.NewManager(cfg.SigningSecret,
		token.WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	if err != nil {
		repos.DB.Close()
		return nil, err
	}

	log := logging.NewSlogLogger(slog.Default())

	api := apiclient.NewHTTPClient(cfg.ServerEndpointAddr)
	auth := services.NewAuthService(api, repos.Secrets, tokens, cfg.EncryptionSecret, log)
	limiter := ratelimit.New(repos.DB)

	return &App{
		config: cfg,
		ctrl:   session.NewController(auth, limiter, tokens, log),
		repos:  repos,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		log:    log,
	}, nil
}

// Run restores any persisted session and enters the REPL. It returns when
// the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) error {
	defer a.repos.DB.Close()

	a.ctrl.Bootstrap(ctx)
	if user := a.ctrl.CurrentUser(); user != nil {
		printlnFn("Welcome back,", user.Name)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.State() == session.StateAuthenticated
}

func (a *App) status() string {
	if user := a.ctrl.CurrentUser(); user != nil {
		return user.Email
	}
	return a.ctrl.State().String()
}
