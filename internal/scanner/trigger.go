package scanner

import (
	"sync/atomic"

	"art-vault/internal/logging"
	"art-vault/internal/metrics"
)

// ScanMode identifies what caused a scan iteration.
type ScanMode string

const (
	ModeManual    ScanMode = "manual"
	ModeScheduled ScanMode = "scheduled"
)

// Trigger is a single-slot request queue in front of the scan loop. Requests
// that arrive while one is already pending are dropped, not queued.
type Trigger struct {
	requests chan ScanMode
	scanning atomic.Bool
}

// NewTrigger creates an empty trigger.
func NewTrigger() *Trigger {
	return &Trigger{requests: make(chan ScanMode, 1)}
}

// TriggerScan asks for a scan without blocking. It reports whether the
// request was queued; a false return means one was already pending.
func (t *Trigger) TriggerScan(mode ScanMode) bool {
	select {
	case t.requests <- mode:
		logging.Debug("Scan requested (%s)", mode)
		metrics.ScannerTriggersTotal.WithLabelValues(string(mode), "accepted").Inc()
		return true
	default:
		logging.Warn("Scan request (%s) dropped: a request is already pending", mode)
		metrics.ScannerTriggersTotal.WithLabelValues(string(mode), "dropped").Inc()
		return false
	}
}

// Requests returns the channel the scan loop consumes. There must be a
// single consumer.
func (t *Trigger) Requests() <-chan ScanMode {
	return t.requests
}

// IsScanning reports whether a scan iteration is in progress.
func (t *Trigger) IsScanning() bool {
	return t.scanning.Load()
}

// beginScan marks a scan as started. It returns false if one already is.
func (t *Trigger) beginScan() bool {
	return t.scanning.CompareAndSwap(false, true)
}

func (t *Trigger) endScan() {
	t.scanning.Store(false)
}
