package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/config"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/handlers"
	"github.com/sokocrafts/sokoni/internal/identity"
	"github.com/sokocrafts/sokoni/internal/store"
)

// newCore builds the collaborators every service binary shares.
func newCore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus, err := eventbus.NewRabbitMQEventBus(eventbus.AMQPURL(cfg), cfg.RabbitMQConfig.Exchange)
	if err != nil {
		pool.Close()
		return nil, err
	}

	codec := claims.NewCodec(
		cfg.JWTConfig.ApiSecret,
		time.Duration(cfg.JWTConfig.LeewaySeconds)*time.Second,
	)

	app := &App{
		config: cfg,
		logger: logger,
		pool:   pool,
		bus:    bus,
		codec:  codec,
		router: baseRouter(),
	}
	app.closers = append(app.closers, bus.Close, pool.Close)
	return app, nil
}

// NewIdentity assembles the identity service: account registration,
// login, account lifecycle and the identity-events publisher.
func NewIdentity(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	app, err := newCore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	service := identity.NewService(
		store.NewPostgresIdentityStore(app.pool),
		eventbus.NewIdentityEventBus(app.bus, logger),
		app.codec,
		time.Duration(cfg.JWTConfig.ExpireDelta)*time.Hour,
		logger,
	)

	handler := &handlers.IdentityHandler{Logger: logger, Service: service}
	handler.RegisterHandlers(app.router)

	return app, nil
}
