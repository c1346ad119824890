package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/resale-cli/internal/cache"
	"github.com/sells-group/resale-cli/internal/config"
)

// Store is a cache backend that can also drop stale rows and release its
// resources.
type Store interface {
	cache.Store

	// PurgeExpired deletes entries stored before cutoff and returns how many.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects the configured backend and runs its migration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return cache.NewMemory(), nil
	case DriverSQLite:
		st, err := NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case DriverPostgres:
		st, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
