// Package api provides the HTTP API server and handlers for the group server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/metrics"
	"github.com/nexogroup/nexo-server/internal/ratelimit"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/store"
)

// Options holds the HTTP-level settings of the server.
type Options struct {
	AdminKey           string
	CORSAllowedOrigins []string
	IntakeLimiter      *ratelimit.KeyedRateLimiter
	LoginLimiter       *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         store.Store
	services      *Services
	index         *search.MemberIndex
	metrics       *metrics.Metrics
	adminKey      string
	intakeLimiter *ratelimit.KeyedRateLimiter
	loginLimiter  *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	index *search.MemberIndex,
	m *metrics.Metrics,
	opts Options,
	log *slog.Logger,
) *Server {
	s := &Server{
		store:         st,
		services:      services,
		index:         index,
		metrics:       m,
		adminKey:      opts.AdminKey,
		intakeLimiter: opts.IntakeLimiter,
		loginLimiter:  opts.LoginLimiter,
		router:        chi.NewRouter(),
		logger:        log,
	}

	s.setupMiddleware(opts.CORSAllowedOrigins)

	humaConfig := huma.DefaultConfig("Nexo API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
		"adminKey": {
			Type: "apiKey",
			In:   "header",
			Name: AdminKeyHeader,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(log)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(s.recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", AdminKeyHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(s.resolveRole)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(s.notFound)

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.registerHealthRoutes()
	s.registerIntentionRoutes()
	s.registerMemberRoutes()
	s.registerAuthRoutes()
	s.registerMeetingRoutes()
	s.registerMembershipRoutes()
	s.registerDashboardRoutes()
	s.registerNoticeRoutes()
	s.registerThankRoutes()
	s.registerEmailRoutes()
}

// Security requirements used by operations.
var (
	adminSecurity  = []map[string][]string{{"adminKey": {}}}
	memberSecurity = []map[string][]string{{"bearer": {}}, {"adminKey": {}}}
)

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
