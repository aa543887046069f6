package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Server runs the API over plain HTTP outside Lambda.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(addr string, api *API, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      api.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests. Returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http shutting down")
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
