// Package app wires configuration, storage, messaging and HTTP routes
// into runnable services. Each service binary gets its own constructor
// and they all share the same lifecycle in Start.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokocrafts/sokoni/database"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/config"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/handlers"
	"github.com/sokocrafts/sokoni/internal/middleware"
)

// consumerStart binds one consumer group to its topic once the
// transport is up.
type consumerStart func(ctx context.Context, bus eventbus.EventBus) error

type App struct {
	config    *config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	bus       eventbus.EventBus
	codec     *claims.Codec
	router    *http.ServeMux
	consumers []consumerStart
	closers   []func()
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DatabaseConfig.DatabaseUser,
		cfg.DatabaseConfig.DatabasePassword,
		cfg.DatabaseConfig.DatabaseHost,
		cfg.DatabaseConfig.DatabasePort,
		cfg.DatabaseConfig.DatabaseName,
	))
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = cfg.DatabaseConfig.DatabasePoolMaxConnections
	dbConfig.MinConns = cfg.DatabaseConfig.DatabasePoolMinConnections
	dbConfig.MaxConnLifetime = time.Hour * time.Duration(cfg.DatabaseConfig.DatabasePoolMaxConnectionLifetime)

	return pgxpool.NewWithConfig(ctx, dbConfig)
}

// Starts the application server
func (a *App) Start(ctx context.Context) error {
	if err := database.RunMigrations(a.logger, a.pool); err != nil {
		return err
	}

	for _, start := range a.consumers {
		if err := start(ctx, a.bus); err != nil {
			return fmt.Errorf("failed to start consumer: %w", err)
		}
	}

	middlewares := middleware.CreateStack(
		middleware.Logging(a.logger),
		middleware.Authenticate(a.codec, a.logger),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.AppConfig.Address, a.config.AppConfig.Port),
		Handler: middlewares(a.router),
	}

	errCh := make(chan error, 1)

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to listen and serve: %w", err)
		}

		close(errCh)
	}()

	a.logger.Info("server running",
		slog.String("service", a.config.AppConfig.ServiceName),
		slog.String("Address", a.config.AppConfig.Address),
		slog.Int("port", a.config.AppConfig.Port),
	)

	select {
	// Wait until we receive SIGINT (ctrl+c on cli)
	case <-ctx.Done():
		break
	case err := <-errCh:
		return err
	}

	sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()

	srv.Shutdown(sCtx)

	for _, cleanup := range a.closers {
		cleanup()
	}

	return nil
}

// ping handler on every service
func baseRouter() *http.ServeMux {
	router := http.NewServeMux()
	router.HandleFunc("GET /ping", handlers.PingHandler)
	return router
}
