// Package api wires the HTTP routes of the prediction service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/quakeml/internal/adapters/http/site"
	service "github.com/okian/quakeml/internal/app"
	"github.com/okian/quakeml/internal/domain/automl"
	"github.com/okian/quakeml/pkg/logger"
	"github.com/okian/quakeml/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Predictor is what the handlers need from a trained model.
type Predictor interface {
	Predict(ctx context.Context, row map[string]float64) (float64, error)
	Features() []string
	Leaderboard() automl.Leaderboard
	CheckReadiness(ctx context.Context) error
}

// StatsProvider exposes how the served model was built.
type StatsProvider interface {
	Stats() service.Stats
	HoldoutMetrics() automl.Metrics
}

// Server wires HTTP routes for the prediction UI and operational endpoints.
type Server struct {
	predictor Predictor
	stats     StatsProvider
	pages     *site.Renderer
	logger    logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithStats enables GET /stats.
func WithStats(p StatsProvider) Option {
	return func(s *Server) {
		s.stats = p
	}
}

// WithRenderer sets the page renderer.
func WithRenderer(r *site.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.pages = r
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server answering from p. A nil p serves every model
// route as unavailable.
func NewServer(p Predictor, opts ...Option) *Server {
	s := &Server{predictor: p}
	for _, opt := range opts {
		opt(s)
	}
	if s.pages == nil {
		s.pages = site.MustNewRenderer()
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.handleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.handleStats, "stats"))
	mux.HandleFunc("/metrics", MetricsMiddleware(
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP, "metrics"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.handlePredict, "predict"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard"))
	mux.HandleFunc("/", MetricsMiddleware(s.handleIndex, "index"))

	s.logger.Debug(ctx, "routes registered")
}

// ready reports whether a model is available to answer.
func (s *Server) ready(ctx context.Context) error {
	if s.predictor == nil {
		return service.ErrNotReady
	}
	return s.predictor.CheckReadiness(ctx)
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
