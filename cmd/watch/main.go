// Command watch observes scheduled publications on a running server and
// publishes each one when its time comes, the way an open editor page does.
//
// Usage: watch [-base-url URL] ID [ID...]
//
// Exit codes: 0 = every record settled, 1 = error or interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/app"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/client"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/trigger"
)

func main() {
	baseURL := flag.String("base-url", "", "publication API base URL (default: trigger.base_url from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	if *baseURL == "" {
		*baseURL = cfg.Trigger.BaseURL
	}

	ids := make([]uuid.UUID, 0, flag.NArg())
	for _, arg := range flag.Args() {
		id, err := uuid.Parse(arg)
		if err != nil {
			log.Fatalf("invalid id %q: %v", arg, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		log.Fatal("usage: watch [-base-url URL] ID [ID...]")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*baseURL, cfg.Trigger.CallTimeout, logger)
	if err := run(ctx, api, ids, cfg.Trigger, logger); err != nil {
		logger.Error("watch failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run watches every id until each has settled. It fails when any id could
// not be watched, after the rest have settled, or when ctx ends first.
func run(ctx context.Context, api *client.Client, ids []uuid.UUID, cfg config.TriggerConfig, logger *slog.Logger) error {
	var (
		wg       sync.WaitGroup
		triggers []*trigger.Trigger
		failed   int
	)
	for _, id := range ids {
		tr, err := watch(ctx, api, id, cfg, logger)
		if err != nil {
			logger.Error("cannot watch publication", slog.String("publication_id", id.String()), slog.String("error", err.Error()))
			failed++
			continue
		}
		if tr == nil {
			continue
		}
		triggers = append(triggers, tr)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-tr.Done()
		}()
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
	case <-ctx.Done():
		for _, tr := range triggers {
			tr.Stop()
		}
		return fmt.Errorf("interrupted: %w", ctx.Err())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d publications could not be watched", failed, len(ids))
	}
	logger.Info("all publications settled")
	return nil
}

// watch starts a trigger for id, or returns nil when the record is not
// scheduled and there is nothing to wait for.
func watch(ctx context.Context, api *client.Client, id uuid.UUID, cfg config.TriggerConfig, logger *slog.Logger) (*trigger.Trigger, error) {
	rec, err := api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.StatusScheduled || rec.ScheduledAt == nil {
		logger.Info("publication is not scheduled",
			slog.String("publication_id", id.String()),
			slog.String("status", string(rec.Status)),
		)
		return nil, nil
	}

	tr, err := trigger.New(api, id, *rec.ScheduledAt, rec.ScheduledTimezone, trigger.Options{
		TickInterval: cfg.TickInterval,
		CallTimeout:  cfg.CallTimeout,
		OnFire: func() {
			fmt.Printf("%s  %q is due, publishing\n", id, rec.Title)
		},
		OnPublished: func() {
			fmt.Printf("%s  %q published\n", id, rec.Title)
		},
		OnSettled: func(status domain.Status) {
			if status == "" {
				status = "DELETED"
			}
			fmt.Printf("%s  %q settled elsewhere (%s)\n", id, rec.Title, status)
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	fmt.Printf("%s  %q scheduled for %s\n", id, rec.Title, tr.Snapshot().Display)
	if err := tr.Start(ctx); err != nil {
		return nil, err
	}
	return tr, nil
}
