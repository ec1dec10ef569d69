package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/infrastructure/http/handler"
	"github.com/fixora/resourcesvc/infrastructure/http/middleware"
	"github.com/fixora/resourcesvc/infrastructure/http/response"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
	"github.com/fixora/resourcesvc/infrastructure/service/ratelimit"
)

// Config represents server configuration
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	EnableRequestLog bool
	RateLimit        middleware.RateLimitConfig
}

// Dependencies are the collaborators the router is assembled from. Metrics,
// Gatherer, RateLimiter and DB may be nil to disable the matching feature.
type Dependencies struct {
	ResourceUseCase inbound.ResourceManagementUseCase
	TokenService    outbound.TokenService
	RateLimiter     ratelimit.RateLimitService
	Logger          logger.Logger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer
	DB              handler.Pinger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger logger.Logger
}

// NewRouter wires handlers and middleware:
//
//	/health, /metrics      public
//	/v1/resources...       bearer token, then rate limit
func NewRouter(cfg Config, deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CorrelationIDMiddleware)
	router.Use(middleware.RequestLogger(deps.Logger, deps.Metrics, cfg.EnableRequestLog))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w)
	})

	handler.NewHealthHandler(deps.DB).RegisterRoutes(router)
	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(middleware.NewAuthMiddleware(deps.TokenService, deps.Logger, deps.Metrics).RequireAuth)
	if deps.RateLimiter != nil {
		v1.Use(middleware.NewRateLimitMiddleware(deps.RateLimiter, cfg.RateLimit, deps.Logger, deps.Metrics).RateLimit)
	}
	handler.NewResourceHandler(deps.ResourceUseCase).RegisterRoutes(v1)

	return router
}

// NewHandler is the router wrapped in CORS when enabled. CORS sits outside
// the router so preflight requests are answered before route matching.
func NewHandler(cfg Config, deps Dependencies) http.Handler {
	router := NewRouter(cfg, deps)
	if !cfg.CORSEnabled {
		return router
	}
	return middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)(router)
}

// New creates a new HTTP server
func New(cfg Config, deps Dependencies) *Server {
	return &Server{
		logger: deps.Logger,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewHandler(cfg, deps),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.server.Addr})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
