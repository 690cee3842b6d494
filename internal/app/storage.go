package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/memory"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres/audit"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	pubsvc "github.com/FritzlyBrenord/mykeProduction-sub000/internal/service/publication"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// storage is the publication service together with the store behind it.
type storage struct {
	svc    *pubsvc.Service
	pinger pinger
	driver string
	close  func()
}

// openStorage connects the configured store and builds the service over it.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) (*storage, error) {
	if cfg.Database.IsMemory() {
		store := memory.New()
		logger.Warn("using in-memory store, data is lost on exit")
		return &storage{
			svc:    pubsvc.NewService(logger, store, store, memory.NewTxManager(store), clock, cfg.Publication),
			pinger: store,
			driver: config.DriverMemory,
			close:  func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if !cfg.Database.SkipMigrations {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &storage{
		svc: pubsvc.NewService(logger,
			publication.New(pool),
			audit.New(pool),
			postgres.NewTxManager(pool),
			clock,
			cfg.Publication,
		),
		pinger: pool,
		driver: config.DriverPostgres,
		close:  pool.Close,
	}, nil
}
