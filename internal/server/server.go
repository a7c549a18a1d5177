// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the one place where the database, the
// services and the handlers are created and connected.
//
//	Config → sqlite.DB → SessionService / PostService → handlers → routes
//
// Keeping it out of main.go means tests can build the whole application
// with New and drive it through Handler without opening a port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/handler"
	"github.com/sakif/psst/internal/middleware"
	sqliteRepo "github.com/sakif/psst/internal/repository/sqlite"
	"github.com/sakif/psst/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string // SQLite file, or ":memory:"
}

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every route.
//
// We import repository/sqlite as sqliteRepo so it is not confused with the
// modernc.org/sqlite driver.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
//
//	GET  /                      → home page (HTML)
//	POST /login                 → login form
//	POST /logout                → logout form
//	POST /post                  → new post (login required)
//	GET  /users/{nick}          → user page (HTML)
//	GET  /mentions/{nick}       → mentions page (HTML)
//	GET  /api/posts             → posts (JSON)
//	POST /api/posts             → new post (JSON, login required)
//	GET  /api/mentions/{nick}   → mentions (JSON)
//	GET  /static/*              → static files
//
// MIDDLEWARE ORDER: RequestID, RealIP, Logger, Recoverer, then LoadUser.
// Logger sits outside Recoverer so a recovered panic is logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// GET /static/css/style.css → {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	templates, err := handler.ParseTemplates(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	// Services receive repository interfaces; s.db satisfies all of them.
	sessionService := service.NewSessionService(s.db, s.db, s.logger)
	postService := service.NewPostService(s.db, s.db, s.logger)

	pageHandler := handler.NewPageHandler(postService, templates, s.logger)
	authHandler := handler.NewAuthHandler(sessionService, pageHandler, s.logger)
	apiHandler := handler.NewAPIHandler(postService, s.logger)

	requireUser := auth.RequireUser(http.HandlerFunc(pageHandler.HandleUnauthorized))

	s.router.Group(func(r chi.Router) {
		r.Use(auth.LoadUser(sessionService, s.logger))

		r.Get("/", pageHandler.HandleHome)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(requireUser).Post("/post", pageHandler.HandleAddPost)
		r.Get("/users/{nick}", pageHandler.HandleUser)
		r.Get("/mentions/{nick}", pageHandler.HandleMentions)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.LoadUser(sessionService, s.logger))

		r.Get("/posts", apiHandler.HandleListPosts)
		r.With(auth.RequireUser(http.HandlerFunc(apiHandler.HandleUnauthorized))).
			Post("/posts", apiHandler.HandleCreatePost)
		r.Get("/mentions/{nick}", apiHandler.HandleListMentions)
	})

	s.router.NotFound(pageHandler.HandleNotFound)

	return nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// DB returns the database the server was opened with.
func (s *Server) DB() *sqliteRepo.DB {
	return s.db
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until ctx is cancelled or the process receives SIGINT
// or SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. give in-flight requests up to 30s to finish
//  3. close the database (flushes the WAL, releases the file lock)
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
