// Package api provides the HTTP API server and handlers for the ReadLoop application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/readloopapp/readloop-server/internal/sse"
	"github.com/readloopapp/readloop-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	api             huma.API
	router          *chi.Mux
	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseHandler *sse.Handler, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		store:           st,
		services:        services,
		router:          chi.NewRouter(),
		sseHandler:      sseHandler,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
		logger:          logger,
	}

	s.setupMiddleware(allowedOrigins)

	RegisterErrorHandler()

	humaConfig := huma.DefaultConfig("ReadLoop API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. Order matters: chi
// requires all middleware before any route is registered.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(RateLimitByPath(s.authRateLimiter, "/api/v1/auth/", s.logger))
	s.router.Use(authMiddleware(s.services.Auth))
}

// registerRoutes registers all API routes on the huma API and, for
// streaming endpoints huma can't serve, directly on chi.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerShelfRoutes()
	s.registerReviewRoutes()
	s.registerSocialRoutes()
	s.registerProfileRoutes()
	s.registerGoalRoutes()
	s.registerActivityRoutes()
	s.registerSearchRoutes()
	s.registerMetadataRoutes()
	s.registerCoverRoutes()

	// SSE endpoint registered directly on chi because huma doesn't support
	// streaming responses.
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}
