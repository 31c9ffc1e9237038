package api

import "net/http"

// handleHealth returns a trivial availability flag. It deliberately does not
// run a verification: liveness of the server and validity of the proof are
// different questions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVerify runs a full verification and returns the complete document.
// A FAIL verdict is still a 200: the verification itself succeeded, the
// proof did not.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	res := s.verifier.Verify(r.Context())
	jsonResponse(w, http.StatusOK, BuildVerifyResponse(s.cfg, res))
}

// handleStatus returns the condensed summary derived from the same result.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	res := s.verifier.Verify(r.Context())
	jsonResponse(w, http.StatusOK, buildStatus(s.cfg, res))
}
