package handlers

import (
	"net/http"
	"runtime"
	"time"

	"medialist/internal/logging"
	"medialist/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Ready         bool   `json:"ready"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	Scanning      bool   `json:"scanning"`
	LastScan      string `json:"lastScan,omitempty"`
	LastScanError string `json:"lastScanError,omitempty"`

	// Progress of the running scan
	ProcessedFiles int `json:"processedFiles"`
	FoundFiles     int `json:"foundFiles"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	TotalItems int `json:"totalItems,omitempty"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	healthStatus := h.indexer.GetHealthStatus()

	response := HealthResponse{
		Ready:         healthStatus.Ready,
		Version:       startup.Version,
		Uptime:        healthStatus.Uptime,
		Scanning:      healthStatus.Scanning,
		LastScanError: healthStatus.LastScanError,
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutine:  runtime.NumGoroutine(),
	}

	switch {
	case !healthStatus.Ready:
		response.Status = statusStarting
	case healthStatus.LastScanError != "":
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	if !healthStatus.LastScan.IsZero() {
		response.LastScan = healthStatus.LastScan.Format(time.RFC3339)
	}

	if healthStatus.Progress != nil {
		response.ProcessedFiles = int(healthStatus.Progress.ProcessedFiles)
		response.FoundFiles = int(healthStatus.Progress.FoundFiles)
	}

	if total, err := h.db.Count(r.Context()); err != nil {
		logging.Warn("health check: failed to count catalog: %v", err)
	} else {
		response.TotalItems = total
	}

	// Return 503 only if not ready at all
	code := http.StatusOK
	if !healthStatus.Ready {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive", http.StatusOK)
}

// ReadinessCheck returns 200 only when the initial scan has finished
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsReady() {
		writeJSONStatus(w, "ready", http.StatusOK)
		return
	}
	writeJSONStatus(w, "not_ready", http.StatusServiceUnavailable)
}
