package handlers

import (
	"net/http"

	"medialist/internal/startup"
)

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Service string `json:"service"`
	startup.BuildInfo
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, VersionResponse{
		Service:   "medialist",
		BuildInfo: startup.GetBuildInfo(),
	})
}
