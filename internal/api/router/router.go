package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/nomination-intake/internal/http/middleware"
	"github.com/wolfman30/nomination-intake/internal/intake"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *intake.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// CORSAllowedOrigins and RateLimiter apply to the nomination routes only.
	RateLimiter httpmiddleware.Limiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.IntakeHandler != nil {
		r.Group(func(nominate chi.Router) {
			// CORS first so preflights do not spend rate-limit quota.
			if len(cfg.CORSAllowedOrigins) > 0 {
				nominate.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			if cfg.RateLimiter != nil {
				nominate.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
			}
			// The handler answers every method itself so that unsupported
			// ones get its 405 body and Allow header.
			nominate.HandleFunc("/nominate", cfg.IntakeHandler.Nominate)
			nominate.HandleFunc("/api/nominate", cfg.IntakeHandler.Nominate)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
