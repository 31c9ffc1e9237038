package api

import (
	"encoding/json"
	"net/http"

	"github.com/uptimeproof/poa/internal/logging"
)

// jsonResponse writes a JSON body with the given status code.
func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("response encoding failed", logging.Err(err))
	}
}

