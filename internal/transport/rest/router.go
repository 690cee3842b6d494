package rest

import (
	"log/slog"
	"net/http"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Publications *PublicationHandler
	Health       *HealthHandler
	// Limiter throttles the authoring endpoints. Nil disables throttling.
	Limiter *middleware.RateLimiter
	CORS    config.CORSConfig
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler for the publication API.
// publish-due is never rate limited: triggers retry it on every tick and the
// statement is idempotent.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	authoring := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Middleware(h)
	}

	p := d.Publications
	mux.HandleFunc("POST /publications/publish-due", p.PublishDue)
	mux.Handle("POST /publications", authoring(p.Create))
	mux.HandleFunc("GET /publications", p.List)
	mux.HandleFunc("GET /publications/{id}", p.Get)
	mux.Handle("PATCH /publications/{id}/status", authoring(p.ChangeStatus))
	mux.Handle("DELETE /publications/{id}", authoring(p.Delete))
	mux.HandleFunc("GET /publications/{id}/history", p.History)
	mux.HandleFunc("GET /timezones", p.Timezones)

	mux.HandleFunc("GET /live", d.Health.Live)
	mux.HandleFunc("GET /ready", d.Health.Ready)
	mux.HandleFunc("GET /health", d.Health.Health)

	return middleware.Chain(
		middleware.Recovery(d.Logger),
		middleware.RequestID,
		middleware.Logger(d.Logger),
		middleware.CORS(d.CORS),
		middleware.Origin("api"),
	)(mux)
}
