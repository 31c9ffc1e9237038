// Package api serves the public verification endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/uptimeproof/poa/internal/config"
	"github.com/uptimeproof/poa/internal/logging"
	"github.com/uptimeproof/poa/internal/middleware"
	"github.com/uptimeproof/poa/internal/poa"
)

// Server is the HTTP verification server. Handlers share one stateless
// verifier, so concurrent requests need no coordination.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	verifier   *poa.Verifier
	limiter    *middleware.RateLimiter
	addr       string
}

// NewServer creates the API server around an already-wired verifier.
func NewServer(cfg *config.Config, verifier *poa.Verifier) *Server {
	s := &Server{
		cfg:      cfg,
		verifier: verifier,
		limiter:  middleware.NewRateLimiter(nil),
		addr:     cfg.ListenAddr,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      withLogging(withRequestID(withCORS(s.limiter.Middleware(mux)))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Infof("Starting PoA verification server on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
