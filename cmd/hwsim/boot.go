package main

import (
	"context"
	"log/slog"
	"os"

	"hardware-sim/internal/config"
	"hardware-sim/internal/observability"
	"hardware-sim/internal/store"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Store
}

// boot loads configuration and opens the configured store. Logs go to
// stderr so command output stays pipeable.
func boot(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.Logger, os.Stderr)
	slog.SetDefault(logger)

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: st}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
