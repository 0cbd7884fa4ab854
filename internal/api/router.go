package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sectorclash/internal/game"
	"sectorclash/internal/world"
)

// ViewEngine is the read-only engine surface the HTTP handlers use.
// Handlers go through View, never Snapshot, so polling observers can
// never steal delta events from the WebSocket hub.
type ViewEngine interface {
	View() game.Snapshot
	Summary() (game.Summary, bool)
	MatchID() string
	Layout() *world.Layout
}

// RouterConfig carries the router's dependencies. The struct exists
// for injection: tests pass a stub engine and a permissive limiter.
type RouterConfig struct {
	// Engine is the match being observed (required).
	Engine ViewEngine

	// RateLimiter is an optional pre-built limiter; built from
	// RateLimitConfig (or defaults) when nil.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default localhost-only origins.
	CORSOrigins []string

	// DisableLogging drops the request logger, for benchmarks.
	DisableLogging bool
}

type routerHandlers struct {
	engine ViewEngine
}

// NewRouter constructs the HTTP router. It is pure: no goroutines, no
// listeners, safe to wrap in httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject floods early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{engine: cfg.Engine}

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/match", h.handleGetMatch)
		r.Get("/summary", h.handleGetSummary)
		r.Get("/layout", h.handleGetLayout)
	})

	return r
}
