// Package backend opens the catalog store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/config"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
	"github.com/BHuysamen/MovieApiHomework/internal/repository"
	"github.com/BHuysamen/MovieApiHomework/internal/sqlite"
	"github.com/BHuysamen/MovieApiHomework/internal/store"
)

// Store is a catalog store that can be seeded, health checked and closed.
type Store interface {
	catalog.Store
	fixtures.Seeder
	HealthCheck(ctx context.Context) error
	Close() error
}

type postgresStore struct {
	*repository.Repository
	pool *store.Store
}

func (p postgresStore) HealthCheck(ctx context.Context) error {
	return p.pool.HealthCheck(ctx)
}

func (p postgresStore) Close() error {
	p.pool.Close()
	return nil
}

// Open connects to the store named by cfg.DBDriver. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg config.Config, log *logger.Logger) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		opts := cfg.StoreOptions()
		opts.Logger = log
		st, err := store.New(ctx, cfg.DBURL, opts)
		if err != nil {
			return nil, err
		}
		return postgresStore{Repository: repository.New(st), pool: st}, nil
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.DBURL, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}
