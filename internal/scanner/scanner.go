package scanner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"art-vault/internal/database"
	"art-vault/internal/filesystem"
	"art-vault/internal/logging"
	"art-vault/internal/media"
	"art-vault/internal/metrics"
)

// DefaultInterval is used when no positive scan interval is configured.
const DefaultInterval = 5 * time.Minute

// ErrScanInProgress is returned by ScanOnce when another iteration is running.
var ErrScanInProgress = errors.New("scan already in progress")

// Store is the persistence the scan pipeline needs.
type Store interface {
	PathChecker
	ListActiveScanFolders(ctx context.Context) ([]database.ScanFolder, error)
	GetAllowedExtensions(ctx context.Context) ([]string, error)
	InsertAsset(ctx context.Context, in *database.NewAsset) (*database.Asset, error)
	SetLastScan(ctx context.Context, t time.Time) error
}

// MetadataExtractor derives metadata and a thumbnail for one file.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string, size int64) (*media.Metadata, error)
	DiscardThumbnail(thumbPath string)
}

// Gate pauses the scanner between files, for example under memory pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

// Result summarizes one scan iteration.
type Result struct {
	Mode          ScanMode      `json:"mode"`
	Folders       int           `json:"folders"`
	FoldersFailed int           `json:"foldersFailed"`
	Discovered    int           `json:"discovered"`
	Indexed       int           `json:"indexed"`
	Skipped       int           `json:"skipped"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration"`
}

// Processed is the number of discovered files handled so far.
func (r Result) Processed() int {
	return r.Indexed + r.Skipped + r.Failed
}

// Scanner owns the background scan loop.
type Scanner struct {
	store     Store
	extractor MetadataExtractor
	trigger   *Trigger
	progress  *Broadcaster
	interval  time.Duration
	retry     filesystem.RetryConfig
	gate      Gate

	lastResult atomic.Pointer[Result]
}

// New creates a scanner. A nil trigger or broadcaster is replaced with a
// fresh one.
func New(store Store, extractor MetadataExtractor, trigger *Trigger, progress *Broadcaster, interval time.Duration) *Scanner {
	if trigger == nil {
		trigger = NewTrigger()
	}
	if progress == nil {
		progress = NewBroadcaster()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scanner{
		store:     store,
		extractor: extractor,
		trigger:   trigger,
		progress:  progress,
		interval:  interval,
		retry:     filesystem.DefaultRetryConfig(),
	}
}

// SetGate installs a gate consulted before each file. It must be called
// before Run.
func (s *Scanner) SetGate(g Gate) {
	s.gate = g
}

// Trigger returns the scanner's trigger.
func (s *Scanner) Trigger() *Trigger {
	return s.trigger
}

// Progress returns the scanner's event broadcaster.
func (s *Scanner) Progress() *Broadcaster {
	return s.progress
}

// LastResult returns the summary of the most recent iteration, if any.
func (s *Scanner) LastResult() (Result, bool) {
	r := s.lastResult.Load()
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Run scans immediately, then whenever the interval elapses or a trigger
// arrives, until ctx is cancelled. Iteration failures are logged and never
// end the loop.
func (s *Scanner) Run(ctx context.Context) error {
	logging.Info("Scanner loop started (interval %v)", s.interval)

	s.runIteration(ctx, ModeScheduled)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			logging.Info("Scanner loop stopped")
			return nil
		}

		select {
		case <-ctx.Done():
			logging.Info("Scanner loop stopped")
			return nil
		case <-timer.C:
			s.runIteration(ctx, ModeScheduled)
		case mode := <-s.trigger.Requests():
			s.runIteration(ctx, mode)
		}
		timer.Reset(s.interval)
	}
}

func (s *Scanner) runIteration(ctx context.Context, mode ScanMode) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Scan (%s) panicked: %v\n%s", mode, r, debug.Stack())
		}
	}()

	result, err := s.ScanOnce(ctx, mode)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Info("Scan (%s) cancelled after %d of %d files", mode, result.Processed(), result.Discovered)
	case errors.Is(err, ErrScanInProgress):
		logging.Warn("Scan (%s) skipped: %v", mode, err)
	default:
		logging.Error("Scan (%s) failed: %v", mode, err)
	}
}

// ScanOnce runs a single scan iteration: discover new files in every active
// folder, extract their metadata and record them. Per-file and per-folder
// failures are counted in the result, not returned. The returned error is
// ErrScanInProgress, a store failure that prevents the scan from starting, or
// ctx's error on cancellation.
func (s *Scanner) ScanOnce(ctx context.Context, mode ScanMode) (result Result, err error) {
	result.Mode = mode
	if !s.trigger.beginScan() {
		return result, ErrScanInProgress
	}

	start := time.Now()
	completed := false
	metrics.ScannerIsRunning.Set(1)
	s.publish(EventStatus, fmt.Sprintf("Scan started (%s)", mode), 0, 0, true)

	defer func() {
		result.Duration = time.Since(start)

		status := "success"
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = "cancelled"
		case err != nil:
			status = "error"
		case !completed:
			status = "panic"
		}

		metrics.ScannerIsRunning.Set(0)
		metrics.ScannerLastRunDuration.Set(result.Duration.Seconds())
		metrics.ScannerRunsTotal.WithLabelValues(string(mode), status).Inc()
		if status == "success" {
			metrics.ScannerLastRunTimestamp.Set(float64(time.Now().Unix()))
		}

		last := result
		s.lastResult.Store(&last)
		s.trigger.endScan()

		msg := fmt.Sprintf("Scan finished: %d indexed, %d skipped, %d failed", result.Indexed, result.Skipped, result.Failed)
		if status != "success" {
			msg = fmt.Sprintf("Scan %s after %d of %d files", status, result.Processed(), result.Discovered)
		}
		s.publish(EventFinished, msg, result.Discovered, result.Processed(), false)
	}()

	folders, err := s.store.ListActiveScanFolders(ctx)
	if err != nil {
		return result, fmt.Errorf("list scan folders: %w", err)
	}
	exts, err := s.store.GetAllowedExtensions(ctx)
	if err != nil {
		return result, fmt.Errorf("load allowed extensions: %w", err)
	}
	allowed := NewExtensionSet(exts)

	type folderWork struct {
		folder database.ScanFolder
		files  []Candidate
	}
	work := make([]folderWork, 0, len(folders))
	// Nested scan folders discover the same files; the first folder wins.
	seen := make(map[string]struct{})

	for _, folder := range folders {
		found, err := Discover(ctx, folder.Path, allowed, s.store)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			logging.Warn("Skipping scan folder %s: %v", folder.Path, err)
			metrics.ScannerFolderErrors.Inc()
			result.FoldersFailed++
			continue
		}
		files := found[:0]
		for _, c := range found {
			if _, dup := seen[c.Path]; dup {
				continue
			}
			seen[c.Path] = struct{}{}
			files = append(files, c)
		}
		result.Folders++
		result.Discovered += len(files)
		work = append(work, folderWork{folder: folder, files: files})
	}

	metrics.ScannerFilesDiscovered.Add(float64(result.Discovered))
	logging.Info("Scan (%s): %d new files in %d folders", mode, result.Discovered, result.Folders)
	s.publish(EventProgress, fmt.Sprintf("Found %d new files", result.Discovered), result.Discovered, 0, true)

	for _, w := range work {
		for _, file := range w.files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if s.gate != nil {
				if err := s.gate.Wait(ctx); err != nil {
					return result, err
				}
			}

			out, err := s.processFile(ctx, w.folder.ID, file)
			switch out {
			case outcomeIndexed:
				result.Indexed++
			case outcomeSkipped:
				result.Skipped++
			default:
				result.Failed++
			}
			if err != nil {
				return result, err
			}

			s.publish(EventProgress, "Indexing "+filepath.Base(file.Path), result.Discovered, result.Processed(), true)
		}
	}

	if err := s.store.SetLastScan(ctx, time.Now()); err != nil {
		logging.Warn("Failed to record scan completion time: %v", err)
	}

	completed = true
	logging.Info("Scan complete: %d indexed, %d skipped, %d failed, %d folders skipped in %v",
		result.Indexed, result.Skipped, result.Failed, result.FoldersFailed, time.Since(start))
	return result, nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeIndexed
	outcomeSkipped
)

// processFile extracts and records one file. The only error it returns is
// ctx's; every other failure is reported through the outcome.
func (s *Scanner) processFile(ctx context.Context, folderID int64, file Candidate) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Recovered while processing %s: %v", file.Path, r)
			metrics.ScannerFileErrors.WithLabelValues("panic").Inc()
			out, err = outcomeFailed, nil
		}
	}()

	info, err := filesystem.StatWithRetry(file.Path, s.retry)
	if err != nil {
		logging.Debug("Skipping %s: %v", file.Path, err)
		metrics.ScannerFileErrors.WithLabelValues("stat").Inc()
		return outcomeFailed, nil
	}

	meta, err := s.extractor.Extract(ctx, file.Path, info.Size())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcomeFailed, ctxErr
		}
		logging.Info("Extraction failed for %s: %v", file.Path, err)
		metrics.ScannerFileErrors.WithLabelValues("extract").Inc()
		return outcomeFailed, nil
	}

	_, err = s.store.InsertAsset(ctx, &database.NewAsset{
		FolderID:      folderID,
		FilePath:      file.Path,
		FileName:      filepath.Base(file.Path),
		FileType:      meta.FileType,
		Size:          info.Size(),
		ModifiedAt:    info.ModTime(),
		ThumbnailPath: meta.ThumbnailPath,
		FileHash:      meta.FileHash,
		ImageWidth:    meta.Width,
		ImageHeight:   meta.Height,
		BitDepth:      meta.BitDepth,
		HasAlpha:      meta.HasAlpha,
		DominantColor: meta.DominantColor,
	})
	if err != nil {
		s.extractor.DiscardThumbnail(meta.ThumbnailPath)
		if errors.Is(err, database.ErrAssetExists) {
			logging.Debug("Skipping %s: already recorded", file.Path)
			return outcomeSkipped, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcomeFailed, ctxErr
		}
		logging.Info("Failed to record %s: %v", file.Path, err)
		metrics.ScannerFileErrors.WithLabelValues("persist").Inc()
		return outcomeFailed, nil
	}

	metrics.ScannerAssetsIndexed.WithLabelValues(string(meta.FileType)).Inc()
	return outcomeIndexed, nil
}

func (s *Scanner) publish(t EventType, status string, total, current int, scanning bool) {
	s.progress.Publish(Event{
		Type:       t,
		Status:     status,
		Total:      total,
		Current:    current,
		IsScanning: scanning,
	})
}
