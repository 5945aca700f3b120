package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterConfig carries the router settings that come from configuration.
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	Credentials        []Credential
	Metrics            http.Handler // served at /metrics when non-nil
}

// NewRouter builds the Chi router. The pass-through endpoints keep the
// paths the browser client already uses; the aggregated search and the
// health check live under /api/v1.
func NewRouter(handlers *Handlers, cfg RouterConfig, log *slog.Logger) *chi.Mux {
	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = 60
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{headerResolvedVia},
		MaxAge:         300,
	}))

	r.Get("/api/v1/health", HealthHandlerFunc(cfg.Credentials, log))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(limit, time.Minute))
		r.Get("/weather", handlers.Weather)
		r.Get("/photos", handlers.Photos)
		r.Get("/destination-info", handlers.DestinationInfo)
		r.Get("/api/v1/search", handlers.Search)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
