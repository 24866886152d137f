package handlers

import (
	"errors"
	"net/http"

	"medialist/internal/indexer"
	"medialist/internal/logging"
	"medialist/internal/scanlock"
)

// ScanProgressResponse is the live view of the current or last scan.
type ScanProgressResponse struct {
	Scanning bool                 `json:"scanning"`
	Progress indexer.ScanProgress `json:"progress"`
}

// TriggerScan starts a background scan of the configured roots.
func (h *Handlers) TriggerScan(w http.ResponseWriter, _ *http.Request) {
	err := h.indexer.TriggerScan()
	switch {
	case err == nil:
		logging.Info("Library scan triggered via API")
		writeJSONStatus(w, "accepted", http.StatusAccepted)
	case errors.Is(err, indexer.ErrScanInProgress), errors.Is(err, scanlock.ErrScanLocked):
		writeJSONError(w, err.Error(), http.StatusConflict)
	default:
		logging.Error("failed to trigger scan: %v", err)
		writeJSONError(w, "Failed to start scan", http.StatusInternalServerError)
	}
}

// GetScanProgress returns a snapshot of the running scan, or of the last one.
func (h *Handlers) GetScanProgress(w http.ResponseWriter, _ *http.Request) {
	progress := h.indexer.Progress()
	if progress.Errors == nil {
		progress.Errors = []string{}
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, ScanProgressResponse{
		Scanning: h.indexer.IsScanning(),
		Progress: progress,
	})
}
