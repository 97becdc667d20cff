package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flowdoc/clinic-platform/internal/calendar"
	httpmiddleware "github.com/flowdoc/clinic-platform/internal/http/middleware"
	"github.com/flowdoc/clinic-platform/internal/patients"
	"github.com/flowdoc/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	PatientsHandler    *patients.Handler
	CalendarHandler    *calendar.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.PatientsHandler != nil {
		r.Route("/patients", func(r chi.Router) {
			r.Get("/", cfg.PatientsHandler.List)
			r.Post("/", cfg.PatientsHandler.Create)
		})
	}

	if cfg.CalendarHandler != nil {
		r.Route("/calendar", func(r chi.Router) {
			r.Get("/{view}", cfg.CalendarHandler.GetCalendar)
			r.Post("/navigate", cfg.CalendarHandler.Navigate)
			r.Post("/refresh", cfg.CalendarHandler.Refresh)
		})
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.CalendarHandler.ListAppointments)
			r.Post("/", cfg.CalendarHandler.CreateAppointment)
			r.Put("/{id}", cfg.CalendarHandler.UpdateAppointment)
			r.Delete("/{id}", cfg.CalendarHandler.DeleteAppointment)
			r.Patch("/{id}/status", cfg.CalendarHandler.UpdateStatus)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
