package handlers

import (
	"encoding/json"
	"net/http"

	"medialist/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// respondJSON writes v as JSON with the given status code. The body is
// encoded before the header is sent, so an unencodable value becomes a 500
// instead of a truncated response.
func respondJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error("failed to encode JSON response: %v", err)
		code = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "internal error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logging.Debug("failed to write JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, errorResponse{Error: message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string, statusCode int) {
	respondJSON(w, statusCode, statusResponse{Status: status})
}
