// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alchemorsel/menupairing/internal/infrastructure/ai"
	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/menupairing/internal/infrastructure/monitoring"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// BackendHealth reports the state of the completion backend
type BackendHealth interface {
	CheckHealth(ctx context.Context) *ai.HealthStatus
}

// Server is the JSON API HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	pairing *handlers.PairingHandlers
	metrics *monitoring.MetricsCollector
	health  BackendHealth
	docs    *OpenAPIHandler
	tracing bool
}

// NewServer creates a new API server. metrics and health may be nil.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	pairing *handlers.PairingHandlers,
	metrics *monitoring.MetricsCollector,
	health BackendHealth,
	tracing *monitoring.TracingProvider,
) (*Server, error) {
	docs, err := NewOpenAPIHandler(log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		logger:  log.Named("apiserver"),
		pairing: pairing,
		metrics: metrics,
		health:  health,
		docs:    docs,
		tracing: tracing != nil && tracing.Enabled(),
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if s.tracing {
		handler = otelhttp.NewHandler(handler, "menupairing.http",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				// renamed to the route pattern by monitoring.RouteSpanName
				return "HTTP " + r.Method
			}),
		)
	}
	if cfg.Server.EnableHTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{
			MaxConcurrentStreams: cfg.Server.MaxConcurrentStreams,
			IdleTimeout:          cfg.Server.IdleTimeout,
		})
	}

	s.server = &http.Server{
		Addr:           cfg.Address(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s, nil
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	if s.tracing {
		r.Use(monitoring.RouteSpanName)
	}
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}
	if s.config.Server.EnableCompression {
		r.Use(chimiddleware.Compress(5))
	}
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	r.Get(s.config.Monitoring.HealthCheckPath, s.handleHealthCheck)
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	var pairingMiddleware []func(http.Handler) http.Handler
	if s.config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerMin, s.config.RateLimit.BurstSize)
		pairingMiddleware = append(pairingMiddleware, middleware.RateLimit(limiter, s.logger))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/openapi.yaml", s.docs.ServeOpenAPISpec)
		r.Get("/openapi.json", s.docs.ServeOpenAPIJSON)
		s.pairing.Routes(r, pairingMiddleware...)
	})

	return r
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.server.Addr),
		zap.Bool("tracing", s.tracing),
		zap.Bool("http2", s.config.Server.EnableHTTP2),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string           `json:"status"`
	Service   string           `json:"service"`
	Version   string           `json:"version"`
	Timestamp int64            `json:"timestamp"`
	AI        *ai.HealthStatus `json:"ai,omitempty"`
}

// handleHealthCheck reports liveness. An unhealthy backend degrades the
// status but pairing still works through the fallback rules.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Service:   s.config.App.Name,
		Version:   s.config.App.Version,
		Timestamp: time.Now().Unix(),
	}

	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.AI = s.health.CheckHealth(ctx)
		if !resp.AI.Healthy {
			resp.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode health response", zap.Error(err))
	}
}
