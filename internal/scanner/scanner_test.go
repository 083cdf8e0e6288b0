package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"art-vault/internal/assettypes"
	"art-vault/internal/database"
	"art-vault/internal/media"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	folders   []database.ScanFolder
	allowed   []string
	assets    map[string]*database.NewAsset
	insertErr error
	listErr   error
	panicOnce bool
	listCalls int
	lastScan  time.Time
	nextID    int64
}

func newFakeStore(allowed []string, dirs ...string) *fakeStore {
	s := &fakeStore{allowed: allowed, assets: make(map[string]*database.NewAsset)}
	for i, dir := range dirs {
		s.folders = append(s.folders, database.ScanFolder{ID: int64(i + 1), Path: dir, IsActive: true})
	}
	return s
}

func (s *fakeStore) ListActiveScanFolders(_ context.Context) ([]database.ScanFolder, error) {
	s.mu.Lock()
	s.listCalls++
	panicking := s.panicOnce
	s.panicOnce = false
	s.mu.Unlock()

	if panicking {
		panic("store exploded")
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.folders, nil
}

func (s *fakeStore) GetAllowedExtensions(_ context.Context) ([]string, error) {
	return s.allowed, nil
}

func (s *fakeStore) AssetExistsByPath(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[path]
	return ok, nil
}

func (s *fakeStore) InsertAsset(_ context.Context, in *database.NewAsset) (*database.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if _, ok := s.assets[in.FilePath]; ok {
		return nil, fmt.Errorf("%w: %s", database.ErrAssetExists, in.FilePath)
	}
	s.nextID++
	s.assets[in.FilePath] = in
	return &database.Asset{ID: s.nextID, FilePath: in.FilePath, FileName: in.FileName, FileType: in.FileType}, nil
}

func (s *fakeStore) SetLastScan(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScan = t
	return nil
}

func (s *fakeStore) asset(path string) *database.NewAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[path]
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// writeSolidPNG writes a w x h PNG filled with c.
func writeSolidPNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func newTestExtractor(t *testing.T, hashing bool, maxBytes int64) (*media.Extractor, string) {
	t.Helper()

	dir := t.TempDir()
	thumbs := filepath.Join(dir, "thumbs")
	return media.NewExtractor(media.ExtractorConfig{
		ThumbnailDir:    thumbs,
		PlaceholderPath: filepath.Join(dir, "placeholder.png"),
		ThumbnailWidth:  64,
		HashEnabled:     hashing,
		HashMaxBytes:    maxBytes,
	}), thumbs
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	return len(entries)
}

func TestScanOnceFaultIsolation(t *testing.T) {
	lib := t.TempDir()
	for i := 0; i < 9; i++ {
		writeSolidPNG(t, filepath.Join(lib, fmt.Sprintf("img%d.png", i)), 32, 32, color.NRGBA{255, 0, 0, 255})
	}
	corrupt := filepath.Join(lib, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore([]string{".png"}, lib)
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	result, err := s.ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("ScanOnce failed: %v", err)
	}
	if result.Discovered != 10 || result.Indexed != 10 || result.Failed != 0 {
		t.Errorf("Unexpected result %+v", result)
	}

	full := 0
	for i := 0; i < 9; i++ {
		a := store.asset(filepath.Join(lib, fmt.Sprintf("img%d.png", i)))
		if a == nil {
			t.Fatalf("img%d.png was not recorded", i)
		}
		if a.ImageWidth != nil && a.DominantColor != nil && *a.DominantColor == "#FF0000" {
			full++
		}
	}
	if full != 9 {
		t.Errorf("Expected 9 assets with full metadata, got %d", full)
	}

	broken := store.asset(corrupt)
	if broken == nil {
		t.Fatal("Corrupt image should still be recorded")
	}
	if broken.ThumbnailPath != ext.PlaceholderPath() || broken.ImageWidth != nil || broken.DominantColor != nil {
		t.Errorf("Expected placeholder metadata for corrupt image, got %+v", broken)
	}
	if broken.FileType != assettypes.FileTypeImage {
		t.Errorf("Expected image type, got %s", broken.FileType)
	}
}

func TestScanOnceExtensionGating(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	touch(t, filepath.Join(lib, "setup.exe"))
	touch(t, filepath.Join(lib, "b.txt"))

	store := newFakeStore([]string{"PNG"}, lib)
	ext, _ := newTestExtractor(t, false, 0)

	result, err := New(store, ext, nil, nil, time.Hour).ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("ScanOnce failed: %v", err)
	}
	if result.Indexed != 1 || store.count() != 1 {
		t.Fatalf("Expected only a.png to be indexed, got %+v", result)
	}
	if store.asset(filepath.Join(lib, "a.png")) == nil {
		t.Error("a.png was not recorded")
	}
}

func TestScanOnceSkipsMissingFolder(t *testing.T) {
	good := t.TempDir()
	writeSolidPNG(t, filepath.Join(good, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, filepath.Join(t.TempDir(), "gone"), good)
	ext, _ := newTestExtractor(t, false, 0)

	result, err := New(store, ext, nil, nil, time.Hour).ScanOnce(context.Background(), ModeScheduled)
	if err != nil {
		t.Fatalf("A missing folder must not fail the scan: %v", err)
	}
	if result.FoldersFailed != 1 || result.Folders != 1 || result.Indexed != 1 {
		t.Errorf("Unexpected result %+v", result)
	}
}

// countingExtractor counts Extract calls per path.
type countingExtractor struct {
	*media.Extractor
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingExtractor) Extract(ctx context.Context, path string, size int64) (*media.Metadata, error) {
	c.mu.Lock()
	c.calls[path]++
	c.mu.Unlock()
	return c.Extractor.Extract(ctx, path, size)
}

func TestScanOnceNestedFoldersExtractOnce(t *testing.T) {
	lib := t.TempDir()
	sub := filepath.Join(lib, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	writeSolidPNG(t, filepath.Join(sub, "b.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib, sub)
	inner, _ := newTestExtractor(t, false, 0)
	ext := &countingExtractor{Extractor: inner, calls: make(map[string]int)}

	result, err := New(store, ext, nil, nil, time.Hour).ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("ScanOnce failed: %v", err)
	}
	if result.Discovered != 2 || result.Indexed != 2 || result.Skipped != 0 {
		t.Errorf("Expected each file counted once, got %+v", result)
	}
	if len(ext.calls) != 2 {
		t.Errorf("Expected 2 files extracted, got %v", ext.calls)
	}
	for path, n := range ext.calls {
		if n != 1 {
			t.Errorf("%s extracted %d times", path, n)
		}
	}
	if b := store.asset(filepath.Join(sub, "b.png")); b == nil || b.FolderID != 1 {
		t.Errorf("Expected b.png recorded under the first folder, got %+v", b)
	}
}

func TestScanOnceIdempotent(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	writeSolidPNG(t, filepath.Join(lib, "b.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	if _, err := s.ScanOnce(context.Background(), ModeManual); err != nil {
		t.Fatal(err)
	}
	second, err := s.ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatal(err)
	}
	if second.Discovered != 0 || second.Indexed != 0 {
		t.Errorf("Second scan should find nothing new, got %+v", second)
	}
	if store.count() != 2 {
		t.Errorf("Expected 2 assets, got %d", store.count())
	}
	if store.lastScan.IsZero() {
		t.Error("Expected scan completion time to be recorded")
	}
}

func TestScanOnceExistingAssetIsSkipped(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	store.insertErr = fmt.Errorf("%w: raced", database.ErrAssetExists)
	ext, thumbs := newTestExtractor(t, false, 0)

	result, err := New(store, ext, nil, nil, time.Hour).ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("ScanOnce failed: %v", err)
	}
	if result.Skipped != 1 || result.Indexed != 0 || result.Failed != 0 {
		t.Errorf("Expected the duplicate to be skipped, got %+v", result)
	}
	if n := countFiles(t, thumbs); n != 0 {
		t.Errorf("Expected the unused thumbnail to be removed, found %d files", n)
	}
}

func TestScanOncePersistFailure(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	writeSolidPNG(t, filepath.Join(lib, "b.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	store.insertErr = errors.New("disk full")
	ext, thumbs := newTestExtractor(t, false, 0)

	result, err := New(store, ext, nil, nil, time.Hour).ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("Per-file persistence failures must not fail the scan: %v", err)
	}
	if result.Failed != 2 {
		t.Errorf("Expected 2 failures, got %+v", result)
	}
	if n := countFiles(t, thumbs); n != 0 {
		t.Errorf("Expected orphaned thumbnails to be removed, found %d files", n)
	}
}

func TestScanOnceStoreError(t *testing.T) {
	store := newFakeStore([]string{".png"})
	store.listErr = errors.New("database is locked")
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	if _, err := s.ScanOnce(context.Background(), ModeManual); err == nil {
		t.Fatal("Expected store error")
	}
	if s.Trigger().IsScanning() {
		t.Error("Scanning flag must be cleared after a failed iteration")
	}
}

func TestScanOnceRejectsConcurrentScan(t *testing.T) {
	store := newFakeStore([]string{".png"})
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	s.Trigger().beginScan()
	defer s.Trigger().endScan()

	if _, err := s.ScanOnce(context.Background(), ModeManual); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("Expected ErrScanInProgress, got %v", err)
	}
}

func TestScanOnceCancelled(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ScanOnce(ctx, ModeManual); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if s.Trigger().IsScanning() {
		t.Error("Scanning flag must be cleared after cancellation")
	}
	if store.count() != 0 {
		t.Error("Nothing should be recorded after cancellation")
	}
}

type countingGate struct {
	calls atomic.Int32
	err   error
}

func (g *countingGate) Wait(context.Context) error {
	g.calls.Add(1)
	return g.err
}

func TestScanOnceWaitsOnGate(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	writeSolidPNG(t, filepath.Join(lib, "b.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)
	gate := &countingGate{}
	s.SetGate(gate)

	if _, err := s.ScanOnce(context.Background(), ModeManual); err != nil {
		t.Fatal(err)
	}
	if got := gate.calls.Load(); got != 2 {
		t.Errorf("Expected one gate check per file, got %d", got)
	}

	// A gate that gives up ends the scan with its error.
	lib2 := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib2, "c.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	store = newFakeStore([]string{".png"}, lib2)
	s = New(store, ext, nil, nil, time.Hour)
	s.SetGate(&countingGate{err: context.DeadlineExceeded})

	if _, err := s.ScanOnce(context.Background(), ModeManual); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected gate error, got %v", err)
	}
	if store.count() != 0 {
		t.Error("Nothing should be recorded when the gate fails")
	}
}

func TestScanOncePublishesProgress(t *testing.T) {
	lib := t.TempDir()
	writeSolidPNG(t, filepath.Join(lib, "a.png"), 8, 8, color.NRGBA{0, 0, 0, 255})
	writeSolidPNG(t, filepath.Join(lib, "b.png"), 8, 8, color.NRGBA{0, 0, 0, 255})

	store := newFakeStore([]string{".png"}, lib)
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	events, unsub := s.Progress().Subscribe()
	defer unsub()

	if _, err := s.ScanOnce(context.Background(), ModeManual); err != nil {
		t.Fatal(err)
	}

	var got []Event
	for len(events) > 0 {
		got = append(got, <-events)
	}
	if len(got) < 3 {
		t.Fatalf("Expected at least 3 events, got %+v", got)
	}

	first, last := got[0], got[len(got)-1]
	if first.Type != EventStatus || !first.IsScanning {
		t.Errorf("Expected a scanning status event first, got %+v", first)
	}
	if last.Type != EventFinished || last.IsScanning || last.Total != 2 || last.Current != 2 {
		t.Errorf("Expected a finished event for 2 files last, got %+v", last)
	}

	finished := 0
	for _, e := range got {
		if e.Type == EventFinished {
			finished++
		}
	}
	if finished != 1 {
		t.Errorf("Expected exactly one finished event, got %d", finished)
	}

	if r, ok := s.LastResult(); !ok || r.Indexed != 2 {
		t.Errorf("Expected last result with 2 indexed, got %+v (%v)", r, ok)
	}
}

// blockingExtractor holds the first extraction until released.
type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingExtractor() *blockingExtractor {
	return &blockingExtractor{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingExtractor) Extract(ctx context.Context, _ string, _ int64) (*media.Metadata, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &media.Metadata{FileType: assettypes.FileTypeImage, ThumbnailPath: "placeholder.png"}, nil
}

func (b *blockingExtractor) DiscardThumbnail(string) {}

// panickingExtractor panics on every call.
type panickingExtractor struct{}

func (panickingExtractor) Extract(context.Context, string, int64) (*media.Metadata, error) {
	panic("decoder bug")
}

func (panickingExtractor) DiscardThumbnail(string) {}

func waitFor(t *testing.T, events <-chan Event, typ EventType) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for %s event", typ)
		}
	}
}

func TestRunAtMostOneScanInFlight(t *testing.T) {
	lib := t.TempDir()
	touch(t, filepath.Join(lib, "a.png"))

	store := newFakeStore([]string{".png"}, lib)
	ext := newBlockingExtractor()
	s := New(store, ext, nil, nil, time.Hour)

	events, unsub := s.Progress().Subscribe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ext.started:
	case <-time.After(5 * time.Second):
		t.Fatal("Initial scan did not start")
	}
	if !s.Trigger().IsScanning() {
		t.Fatal("Expected IsScanning during the initial scan")
	}

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Trigger().TriggerScan(ModeManual) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := accepted.Load(); got != 1 {
		t.Errorf("Expected one pending trigger, got %d accepted", got)
	}

	close(ext.release)

	// The initial scan, then one scan for the single pending trigger.
	waitFor(t, events, EventFinished)
	second := waitFor(t, events, EventFinished)
	if second.Total != 0 {
		t.Errorf("Second scan should find nothing new, got %+v", second)
	}

	select {
	case e := <-events:
		if e.Type == EventStatus {
			t.Errorf("Unexpected third scan: %+v", e)
		}
	case <-time.After(200 * time.Millisecond):
	}

	if s.Trigger().IsScanning() {
		t.Error("Expected idle after scans complete")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunStopsDuringScan(t *testing.T) {
	lib := t.TempDir()
	touch(t, filepath.Join(lib, "a.png"))

	ext := newBlockingExtractor()
	s := New(newFakeStore([]string{".png"}, lib), ext, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ext.started:
	case <-time.After(5 * time.Second):
		t.Fatal("Initial scan did not start")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop within one file step")
	}
	if s.Trigger().IsScanning() {
		t.Error("Expected idle after shutdown")
	}
}

func TestRunSurvivesIterationPanic(t *testing.T) {
	store := newFakeStore([]string{".png"}, t.TempDir())
	store.panicOnce = true
	ext, _ := newTestExtractor(t, false, 0)
	s := New(store, ext, nil, nil, time.Hour)

	events, unsub := s.Progress().Subscribe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, events, EventFinished)
	if s.Trigger().IsScanning() {
		t.Error("Scanning flag must be cleared after a panic")
	}

	if !s.Trigger().TriggerScan(ModeManual) {
		t.Fatal("Trigger should be accepted after the panic")
	}
	waitFor(t, events, EventFinished)

	store.mu.Lock()
	calls := store.listCalls
	store.mu.Unlock()
	if calls != 2 {
		t.Errorf("Expected the loop to keep scanning, got %d iterations", calls)
	}

	cancel()
	<-done
}

func TestProcessFileRecoversPanic(t *testing.T) {
	lib := t.TempDir()
	touch(t, filepath.Join(lib, "a.png"))
	touch(t, filepath.Join(lib, "b.png"))

	store := newFakeStore([]string{".png"}, lib)
	result, err := New(store, panickingExtractor{}, nil, nil, time.Hour).ScanOnce(context.Background(), ModeManual)
	if err != nil {
		t.Fatalf("A per-file panic must not fail the scan: %v", err)
	}
	if result.Failed != 2 || store.count() != 0 {
		t.Errorf("Expected both files to fail, got %+v", result)
	}
}
