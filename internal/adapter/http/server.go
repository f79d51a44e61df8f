// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"

	"bmitrend/internal/app"
	"bmitrend/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	identity     *app.IdentityService
	users        *app.UserService
	measurements *app.MeasurementService

	logger         *slog.Logger
	metrics        metrics.Recorder
	metricsHandler http.Handler
}

// New creates a Server wired to the given application services.
func New(identity *app.IdentityService, users *app.UserService, measurements *app.MeasurementService) *Server {
	return &Server{
		identity:     identity,
		users:        users,
		measurements: measurements,
		logger:       slog.Default(),
		metrics:      metrics.Nop{},
	}
}

// WithLogger sets the logger used for request logs.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

// WithMetrics records response codes into rec and serves h at /metrics.
func (s *Server) WithMetrics(rec metrics.Recorder, h http.Handler) *Server {
	s.metrics = rec
	s.metricsHandler = h
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware, s.recoveryMiddleware, withNoCache)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/config", s.handleConfig)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.handleSSOLogin)
			r.Get("/callback", s.handleSSOCallback)
			r.Post("/guest", s.handleGuestLogin)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Put("/profile", s.handleUpdateProfile)
			r.Get("/measurements", s.handleListMeasurements)
			r.Put("/measurements", s.handleUpsertMeasurement)
			r.Get("/measurements/latest", s.handleLatestMeasurement)
		})

		r.Delete("/measurements/{id}", s.handleDeleteMeasurement)
	})

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	return r
}
