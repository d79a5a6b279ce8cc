// Package server initializes and runs the authkeeper server: it wires the
// storage backends, the login throttle and the HTTP endpoint, and handles
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/rate"
	"github.com/dmitrijs2005/authkeeper/internal/server/shared/db"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
	"github.com/dmitrijs2005/authkeeper/internal/token"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	manager     db.RepositoryManager
	redisClient *redis.Client
	userService *users.Service
	throttle    *rate.Limiter
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tokens, err := token.NewManager(c.SigningSecret,
		token.WithTTL(c.AccessTokenTTL, c.RefreshTokenTTL))
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	throttle := rate.New(redisClient, rate.Config{
		MaxLoginAttempts: c.MaxLoginAttempts,
		Cooldown:         c.LoginCooldown,
		EnableIPThrottle: true,
	})

	userService := users.NewService(manager.Users(), manager.RefreshTokens(), tokens, c)

	return &App{
		config:      c,
		logger:      logger,
		manager:     manager,
		redisClient: redisClient,
		userService: userService,
		throttle:    throttle,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	router := httpapi.SetupRouter(app.userService, app.throttle, app.logger)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "server shutdown", "error", err.Error())
	}

	if err := app.redisClient.Close(); err != nil {
		app.logger.Error(ctx, "closing redis", "error", err.Error())
	}

	return app.manager.Close()
}
