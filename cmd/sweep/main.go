// Command sweep publishes every scheduled record whose time has come, once.
// It is intended to be invoked by an external scheduler when the in-process
// sweeper is disabled.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres/audit"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/adapter/postgres/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/app"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	pubsvc "github.com/FritzlyBrenord/mykeProduction-sub000/internal/service/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if cfg.Database.IsMemory() {
		logger.Error("sweep needs a shared database, driver is memory")
		os.Exit(1)
	}

	timeout := cfg.Sweeper.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = ctxutil.WithOrigin(ctx, "cli")

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := pubsvc.NewService(logger,
		publication.New(pool),
		audit.New(pool),
		postgres.NewTxManager(pool),
		clockwork.NewRealClock(),
		cfg.Publication,
	)

	res, err := svc.PublishDue(ctx)
	if err != nil {
		logger.Error("sweep failed", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}

	logger.Info("sweep completed", slog.Int("published", len(res.IDs)))
}
