// Package api serves the statistics engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/handlers"
	"github.com/We-are-incomplete/war-record-only-read/internal/api/websocket"
	"github.com/We-are-incomplete/war-record-only-read/internal/events"
	"github.com/We-are-incomplete/war-record-only-read/internal/logging"
	"github.com/We-are-incomplete/war-record-only-read/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	listener   net.Listener
	config     Config

	// WebSocket hub for reload notifications
	wsHub *websocket.Hub

	analyzer handlers.Analyzer
	store    Store
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// Store is the storage the API reads the player directory and import
// history from. *storage.Service implements it.
type Store interface {
	handlers.PlayerStore
	handlers.StatusStore
}

// Config holds configuration for the API server.
type Config struct {
	Port int

	// PasswordHash is a bcrypt hash of the shared password. Empty runs the
	// API without authentication.
	PasswordHash string

	// RateLimit is requests per second per client address. 0 disables.
	RateLimit float64
	RateBurst int

	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		RateLimit:      20,
		RateBurst:      40,
		AllowedOrigins: []string{"*"},
		RequestTimeout: 60 * time.Second,
	}
}

// Deps are the services behind the API. Metrics and Logger may be nil.
type Deps struct {
	Analyzer handlers.Analyzer
	Store    Store
	Metrics  *metrics.Metrics
	Logger   *logging.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *Config, deps Deps) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("api")

	s := &Server{
		router:   chi.NewRouter(),
		config:   *cfg,
		wsHub:    websocket.NewHub(logger, cfg.AllowedOrigins...),
		analyzer: deps.Analyzer,
		store:    deps.Store,
		metrics:  deps.Metrics,
		logger:   logger,
	}

	if cfg.PasswordHash == "" {
		logger.Warn("no password hash configured, the API is open to anyone who can reach it")
	}

	if deps.Analyzer != nil {
		s.wsHub.SetGreeting(s.currentSnapshotEvent)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(instrument(s.metrics))

	if s.config.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", passwordHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	}))

	if s.config.RateLimit > 0 {
		s.router.Use(newRateLimiter(s.config.RateLimit, s.config.RateBurst).middleware)
	}

	s.router.Use(s.jsonContentTypeMiddleware)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// currentSnapshotEvent describes the snapshot in service for clients that
// connect between reloads.
func (s *Server) currentSnapshotEvent() websocket.Event {
	snap := s.analyzer.Snapshot()
	return websocket.Event{
		Type: events.RecordsCurrent,
		Data: events.RecordsReloadedEvent{
			Version:  snap.Version,
			Records:  snap.Len(),
			Source:   snap.Source,
			LoadedAt: snap.LoadedAt,
		},
	}
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start binds the port and serves in the background. A port that cannot be
// bound is reported here rather than logged later.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Port, err)
	}
	s.listener = ln

	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.config.Port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewWebSocketObserver creates an observer that forwards dispatched events
// to the hub's clients.
func (s *Server) NewWebSocketObserver() *websocket.Observer {
	return websocket.NewObserver(s.wsHub)
}
