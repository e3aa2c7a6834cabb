package storage

import (
	"context"
	"errors"
	"fmt"

	"canvasboard/internal/domain"
)

// ErrNotFound is returned (wrapped) by Load when no snapshot has been
// saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Open creates the snapshot store described by cfg.
func Open(ctx context.Context, cfg domain.StoreConfig) (domain.SnapshotStore, error) {
	switch cfg.Driver {
	case domain.StoreDriverFile, "":
		return NewFileStore(cfg.DSN)
	case domain.StoreDriverSQLite, domain.StoreDriverPostgres, domain.StoreDriverPgx, domain.StoreDriverMySQL:
		db, err := OpenDB(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil
	case domain.StoreDriverMongoDB:
		return NewMongoStore(ctx, cfg)
	case domain.StoreDriverS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
