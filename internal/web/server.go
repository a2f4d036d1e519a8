// Package web serves the table editor over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datamanager/internal/config"
	"github.com/JonMunkholm/datamanager/internal/session"
	"github.com/JonMunkholm/datamanager/internal/store"
	"github.com/JonMunkholm/datamanager/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP front end for the session workspaces.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	store    store.KV
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer creates a server. kv is only used for health checks; layouts
// reach the store through the session manager.
func NewServer(cfg *config.Config, sessions *session.Manager, kv store.KV) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		store:    kv,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
		}
		r.Use(s.withSession)
		r.Get("/", s.handleIndex)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			r.Get("/table", s.handleTable)

			var importRoute chi.Router = r
			if s.cfg.Rate.Enabled && s.cfg.Rate.ImportLimit > 0 {
				importRoute = r.With(s.newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute).middleware)
			}
			importRoute.Post("/import", s.handleImport)

			r.Post("/sort", s.handleSort)
			r.Post("/columns/{columnID}/rename", s.handleRename)
			r.Post("/columns/{columnID}/move", s.handleMove)
			r.Post("/promote", s.handlePromote)
			r.Post("/demote", s.handleDemote)
			r.Post("/reset", s.handleReset)

			r.Get("/export/{format}", s.handleExport)
		})
	})
}

// Start listens on addr until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	l := newRateLimiter(rate, window)
	s.limiters = append(s.limiters, l)
	return l
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
