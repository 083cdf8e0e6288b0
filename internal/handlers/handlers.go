package handlers

import (
	"time"

	"art-vault/internal/database"
	"art-vault/internal/media"
	"art-vault/internal/scanner"
	"art-vault/internal/startup"
)

// MemoryStatus reports scanner memory backpressure.
type MemoryStatus interface {
	Paused() bool
	Stats() (current, limit int64, usage float64)
}

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	db          *database.Database
	scanner     *scanner.Scanner
	extractor   *media.Extractor
	memory      MemoryStatus
	thumbDir    string
	placeholder string
	startTime   time.Time
}

// New creates the handler set.
func New(db *database.Database, sc *scanner.Scanner, extractor *media.Extractor, config *startup.Config) *Handlers {
	return &Handlers{
		db:          db,
		scanner:     sc,
		extractor:   extractor,
		thumbDir:    config.ThumbnailDir,
		placeholder: config.PlaceholderThumbnail,
		startTime:   time.Now(),
	}
}

// SetMemoryStatus makes the health check report memory backpressure.
func (h *Handlers) SetMemoryStatus(m MemoryStatus) {
	h.memory = m
}
