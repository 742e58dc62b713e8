// Package server exposes the intelligence report over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/metrics"
	"github.com/sells-group/geo-intel/internal/model"
	"github.com/sells-group/geo-intel/internal/store"
	"github.com/sells-group/geo-intel/internal/validate"
)

// DefaultCacheTTL is how long a report stays cached when the config leaves it unset.
const DefaultCacheTTL = 5 * time.Minute

// Orchestrator produces intelligence reports.
type Orchestrator interface {
	Orchestrate(ctx context.Context, workspaceID, brandName, domain string, opts model.Options) *model.IntelligenceResponse
	ValidateDataQuality(resp *model.IntelligenceResponse) validate.DataQuality
}

// Server routes HTTP requests to the orchestrator.
type Server struct {
	orch     Orchestrator
	store    store.Store
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	cacheTTL time.Duration
	origins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the report cache and the store health check.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMetrics records request metrics to c and serves g on /metrics.
func WithMetrics(c *metrics.Collector, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = c
		s.gatherer = g
	}
}

// New creates a Server.
func New(orch Orchestrator, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		orch:     orch,
		gatherer: prometheus.DefaultGatherer,
		cacheTTL: DefaultCacheTTL,
		origins:  cfg.AllowedOrigins,
	}
	if cfg.CacheTTLSecs > 0 {
		s.cacheTTL = time.Duration(cfg.CacheTTLSecs) * time.Second
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1/workspaces/{workspaceID}", func(r chi.Router) {
		r.Get("/intelligence", s.handleIntelligence)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			zap.L().Warn("server: store ping failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
