// Package sweeper runs the publish-due sweep on a cron schedule inside the
// server, so scheduled records go live even when nobody is watching them.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	pubsvc "github.com/FritzlyBrenord/mykeProduction-sub000/internal/service/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/pkg/ctxutil"
)

// Origin tags audit records written by the backstop.
const Origin = "backstop"

type publisher interface {
	PublishDue(ctx context.Context) (pubsvc.PublishResult, error)
}

// Sweeper owns the cron loop.
type Sweeper struct {
	cfg config.SweeperConfig
	svc publisher
	log *slog.Logger

	mu sync.Mutex
	c  *cron.Cron
}

// New creates a Sweeper. Nothing runs until Start.
func New(cfg config.SweeperConfig, svc publisher, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cfg: cfg,
		svc: svc,
		log: logger.With("component", "sweeper"),
	}
}

// Start schedules the sweep. A run still going when the next one is due is
// skipped rather than stacked. ctx is the parent of every run.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		return errors.New("sweeper: already started")
	}

	schedule, err := cron.ParseStandard(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("sweeper: parse schedule %q: %w", s.cfg.Schedule, err)
	}

	logger := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		_, _ = s.RunOnce(ctx)
	}))
	c.Start()
	s.c = c

	s.log.Info("sweeper started", slog.String("schedule", s.cfg.Schedule), slog.Duration("timeout", s.cfg.Timeout))
	return nil
}

// Stop stops scheduling and waits for a running sweep, or for ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.log.Info("sweeper stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweeper: stop: %w", ctx.Err())
	}
}

// RunOnce performs one sweep and returns how many records it published.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx = ctxutil.WithOrigin(ctx, Origin)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	res, err := s.svc.PublishDue(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "backstop sweep failed", slog.String("error", err.Error()))
		return 0, err
	}
	if n := len(res.IDs); n > 0 {
		s.log.InfoContext(ctx, "backstop sweep published", slog.Int("count", n))
	}
	return len(res.IDs), nil
}

// cronLogger routes cron's own messages to slog. Info is only emitted by
// cron at verbose level, so it goes to debug.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
