// Package web provides the local read-only docs site server.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sgx-labs/docsite/internal/recency"
	"github.com/sgx-labs/docsite/internal/site"
)

// Server is the HTTP server for one content root.
type Server struct {
	site    *site.Site
	recent  *recency.Store
	version string
	log     *slog.Logger
	router  chi.Router
}

// NewServer creates and configures the HTTP server. recent may be nil, in
// which case the recency endpoints return an empty list.
func NewServer(s *site.Site, recent *recency.Store, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	srv := &Server{
		site:    s,
		recent:  recent,
		version: version,
		log:     log,
	}
	srv.setupRoutes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(localhostOnly)
	r.Use(securityHeaders)
	r.Use(RequestLogger(s.log))
	r.Use(WithContentScope(s.site.Loader))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Get("/tree", s.handleTree)
		r.Get("/home", s.handleHome)
		r.Get("/search", s.handleSearch)
		r.Get("/search/headings", s.handleSearchHeadings)
		r.Get("/docs/{section}/{file}", s.handleDoc)
		r.Get("/recent", s.handleRecent)
		r.Post("/recent", s.handleRecordRecent)
	})

	s.router = r
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.log.Info("docs site listening", "url", "http://"+listener.Addr().String())

	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
