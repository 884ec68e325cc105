package store

import (
	"context"
	"fmt"
	"log/slog"

	"hardware-sim/internal/config"
)

// Open builds the store selected by cfg.Driver, instrumented with metrics.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		st, err = OpenSQL(cfg.Driver, cfg.DSN, logger)
	case "file":
		st, err = NewFileStore(cfg.Dir, logger)
	case "s3":
		st, err = NewS3Store(ctx, cfg.S3, logger)
	default:
		err = fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("store opened", "driver", cfg.Driver)
	return Instrument(st, cfg.Driver), nil
}
