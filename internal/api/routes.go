package api

import "net/http"

// registerRoutes sets up the public routes using Go 1.22+ method routing.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Liveness probe
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Full verification document and its condensed projection
	mux.HandleFunc("GET /poa/verify.json", s.handleVerify)
	mux.HandleFunc("GET /poa/status.json", s.handleStatus)
}
