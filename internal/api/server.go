// Package api provides the HTTP API server and handlers for the Inkwell application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	authService     *service.AuthService
	bookService     *service.BookService
	categoryService *service.CategoryService
	statsService    *service.StatsService
	authLimiter     *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, authService *service.AuthService, bookService *service.BookService, categoryService *service.CategoryService, statsService *service.StatsService, authLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:           store,
		authService:     authService,
		bookService:     bookService,
		categoryService: categoryService,
		statsService:    statsService,
		authLimiter:     authLimiter,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints. Register and login are public but rate
		// limited by client IP to slow down credential stuffing.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimitByIP)
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
			})
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleGetCurrentUser)
			})
		})

		// Books (require auth).
		r.Route("/books", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleUploadBook)
			r.Get("/", s.handleListBooks)
			r.Get("/{id}", s.handleGetBook)
			r.Patch("/{id}", s.handleUpdateBook)
			r.Delete("/{id}", s.handleDeleteBook)
			r.Get("/{id}/download", s.handleDownloadBook)
			r.Put("/{id}/progress", s.handleUpdateProgress)
			r.Post("/{id}/bookmarks", s.handleToggleBookmark)
		})

		// Categories (require auth).
		r.Route("/categories", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCategory)
			r.Get("/", s.handleListCategories)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		// Stats (require auth).
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/stats", s.handleGetStats)
		})
	})
}
