package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-clan/backoffice/internal/config"
	"github.com/terra-clan/backoffice/internal/services"
	"github.com/terra-clan/backoffice/internal/session"
	"github.com/terra-clan/backoffice/internal/upload"
	"github.com/terra-clan/backoffice/internal/views"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Deps are the collaborators of the console server
type Deps struct {
	Registry *services.Registry
	Session  *session.Store
	Presets  *views.Loader
	Uploader *upload.Uploader
	// Checks are probed by /ready, keyed by name
	Checks map[string]Pinger
}

// Server represents the console HTTP server
type Server struct {
	config   config.ServerConfig
	uploads  config.UploadsConfig
	debounce time.Duration
	router   *chi.Mux

	registry *services.Registry
	session  *session.Store
	presets  *views.Loader
	uploader *upload.Uploader
	checks   map[string]Pinger
	callers  *APIKeyMiddleware
	guard    *SessionMiddleware
	upgrader websocket.Upgrader
}

// NewServer creates a new console server
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:   cfg.Server,
		uploads:  cfg.Uploads,
		debounce: cfg.Views.Debounce,
		registry: deps.Registry,
		session:  deps.Session,
		presets:  deps.Presets,
		uploader: deps.Uploader,
		checks:   deps.Checks,
		callers:  NewAPIKeyMiddleware(cfg.Server.APIKeys),
		guard:    NewSessionMiddleware(deps.Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID", "X-CSRF-Token"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Public
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	// Everything else needs a caller key
	r.Group(func(r chi.Router) {
		r.Use(s.callers.Authenticate)
		r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})

		// The watch stream outlives any request timeout
		r.With(s.guard.Authenticate).Get("/ws/watch", s.handleWatch)

		s.routeAPI(r)
	})

	s.router = r
}

// routeAPI mounts the resource API
func (s *Server) routeAPI(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.guard.Authenticate)
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/resources", s.handleListResources)
		r.With(s.guard.RequirePermission("", "read")).Get("/views/{resource}", s.handleView)

		r.Route("/analytics", func(r chi.Router) {
			r.Use(s.guard.RequirePermission("analytics", "read"))
			r.Get("/kpis", s.handleKPIs)
			r.Get("/visitors", s.handleVisitors)
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Get("/recent", s.handleRecentUploads)
			r.Delete("/", s.handleDeleteUploads)
			r.Post("/{kind}/{context}", s.handleUpload)
		})

		r.Route("/{resource}", func(r chi.Router) {
			r.With(s.guard.RequirePermission("", "read")).Get("/stats", s.handleStats)
			r.With(s.guard.RequirePermission("", "read")).Post("/bulk", s.handleBulk)
			r.With(s.guard.RequirePermission("", "read")).Post("/bulk/preview", s.handleBulkPreview)
			r.With(s.guard.RequirePermission("", "read")).Get("/{id}", s.handleGetRecord)
			r.With(s.guard.RequirePermission("", "delete")).Delete("/{id}", s.handleDeleteRecord)
			r.With(s.guard.RequirePermission("", "update")).Post("/{id}/{action}", s.handleRecordAction)
		})
	})
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
