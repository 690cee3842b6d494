package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	pubsvc "github.com/FritzlyBrenord/mykeProduction-sub000/internal/service/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/sweeper"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/transport/middleware"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/transport/rest"
)

const limiterCleanupInterval = 5 * time.Minute

// Run is the server entry point. It loads configuration, opens the store,
// and serves the publication API until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("database_driver", cfg.Database.Driver),
	)

	a, err := New(ctx, cfg, logger, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.ListenAndServe(ctx)
}

// App is a fully wired server.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *storage
	limiter *middleware.RateLimiter
	sweeper *sweeper.Sweeper
	handler http.Handler
}

// New opens the store and wires the HTTP handler. Nothing is served and the
// sweeper is not started until ListenAndServe or Serve.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) (*App, error) {
	store, err := openStorage(ctx, cfg, logger, clock)
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(cfg.Publication.AuthoringRateLimit, cfg.Publication.AuthoringRateBurst, limiterCleanupInterval)

	handler := rest.NewRouter(rest.RouterDeps{
		Publications: rest.NewPublicationHandler(store.svc, logger, cfg.Publication.PublishDueTimeout),
		Health:       rest.NewHealthHandler(store.pinger, store.driver, BuildVersion()),
		Limiter:      limiter,
		CORS:         cfg.CORS,
		Logger:       logger,
	})

	return &App{
		cfg:     cfg,
		log:     logger,
		store:   store,
		limiter: limiter,
		sweeper: sweeper.New(cfg.Sweeper, store.svc, logger),
		handler: handler,
	}, nil
}

// Handler returns the HTTP handler of the API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Service returns the publication service.
func (a *App) Service() *pubsvc.Service {
	return a.store.svc
}

// ListenAndServe listens on the configured address and calls Serve.
func (a *App) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server and the backstop sweeper until ctx is cancelled,
// then shuts both down within the configured shutdown timeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.log.Handler(), slog.LevelError),
	}

	if !a.cfg.Sweeper.Disabled {
		if err := a.sweeper.Start(context.WithoutCancel(ctx)); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case serveErr = <-errCh:
		a.log.Error("http server failed", slog.String("error", serveErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.sweeper.Stop(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, err)
	}

	a.log.Info("server stopped")
	return serveErr
}

// Close releases the store and background helpers.
func (a *App) Close() {
	a.limiter.Stop()
	a.store.close()
}
