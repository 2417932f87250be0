package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sokocrafts/sokoni/internal/app"
	"github.com/sokocrafts/sokoni/internal/config"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With(slog.String("service", "catalog"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", slog.Any("error", err))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	catalogApp, err := app.NewCatalog(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to create app.", slog.Any("error", err))
		return
	}

	if err := catalogApp.Start(ctx); err != nil {
		logger.Error("Failed to start app.", slog.Any("error", err))
	}
}
