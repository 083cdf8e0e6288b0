package handlers

import (
	"net/http"
	"runtime"
	"time"

	"art-vault/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string  `json:"status"`
	Ready        bool    `json:"ready"`
	Version      string  `json:"version"`
	Uptime       string  `json:"uptime"`
	Scanning     bool    `json:"scanning"`
	LastScan     string  `json:"lastScan,omitempty"`
	MemoryPaused bool    `json:"memoryPaused"`
	MemoryUsage  float64 `json:"memoryUsage,omitempty"`
	Error        string  `json:"error,omitempty"`
	GoVersion    string  `json:"goVersion"`
	NumGoroutine int     `json:"numGoroutine"`
}

// HealthCheck reports service health. The database must answer a ping for
// the service to be healthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Scanning:     h.scanner.Trigger().IsScanning(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if h.memory != nil {
		response.MemoryPaused = h.memory.Paused()
		_, _, response.MemoryUsage = h.memory.Stats()
	}

	if err := h.db.Ping(r.Context()); err != nil {
		response.Status = statusDegraded
		response.Ready = false
		response.Error = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	if last, err := h.db.GetLastScan(r.Context()); err == nil && !last.IsZero() {
		response.LastScan = last.Format(time.RFC3339)
	}
	respondJSON(w, http.StatusOK, response)
}

// LivenessCheck always returns 200 while the process is serving.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when the database is reachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
