package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"art-vault/internal/logging"
	"art-vault/internal/scanner"
)

// sseKeepAlive is how often an idle event stream gets a comment line so
// proxies do not close it.
const sseKeepAlive = 15 * time.Second

// ScanStatusResponse is returned by GET /api/scan/status.
type ScanStatusResponse struct {
	IsScanning bool            `json:"isScanning"`
	LastResult *scanner.Result `json:"lastResult,omitempty"`
}

// StartScan requests a manual scan. It always answers 202: a request that
// arrives while another is pending is dropped, and the pending scan covers it.
func (h *Handlers) StartScan(w http.ResponseWriter, _ *http.Request) {
	h.scanner.Trigger().TriggerScan(scanner.ModeManual)
	w.WriteHeader(http.StatusAccepted)
}

// ScanStatus reports whether a scan is running.
func (h *Handlers) ScanStatus(w http.ResponseWriter, _ *http.Request) {
	response := ScanStatusResponse{IsScanning: h.scanner.Trigger().IsScanning()}
	if last, ok := h.scanner.LastResult(); ok {
		response.LastResult = &last
	}
	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, response)
}

// ScanEvents streams scan progress as Server-Sent Events. The first event
// is always the current status so a reconnecting client never misses state.
func (h *Handlers) ScanEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := h.scanner.Progress().Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	scanning := h.scanner.Trigger().IsScanning()
	status := "idle"
	if scanning {
		status = "scanning"
	}
	if err := writeEvent(w, scanner.Event{Type: scanner.EventStatus, Status: status, IsScanning: scanning}); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, e); err != nil {
				logging.Debug("Scan event stream closed: %v", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, e scanner.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
	return err
}
