package storage

import (
	"context"
	"fmt"
	"log/slog"

	"chatservice/backend/internal/config"
)

// Open connects the adapter selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Storage, error) {
	log = log.With("storage", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return OpenPostgres(cfg.PostgresDSN, log)
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case config.DriverBadger:
		return OpenBadger(cfg.BadgerPath, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
