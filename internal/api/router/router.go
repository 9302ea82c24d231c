package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/underdog7S/zenith-widgets/internal/demo"
	"github.com/underdog7S/zenith-widgets/internal/http/handlers"
	httpmiddleware "github.com/underdog7S/zenith-widgets/internal/http/middleware"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Widgets            *handlers.WidgetHandler
	Demo               *demo.HostPageHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if cfg.Widgets != nil {
		r.Group(func(r chi.Router) {
			if cfg.RateLimitRPS > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
			}
			r.Get("/widgets/{kind}", cfg.Widgets.Render)
		})
	}
	if cfg.Demo != nil {
		r.Mount("/demo", cfg.Demo.Routes())
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
