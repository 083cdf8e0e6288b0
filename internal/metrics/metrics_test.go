package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// valueOf reads the current value of a gauge or counter.
func valueOf(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	case out.Counter != nil:
		return out.Counter.GetValue()
	}
	t.Fatal("unsupported metric type")
	return 0
}

type fakeStats struct {
	stats     Stats
	err       error
	calls     int
	poolCalls int
}

func (f *fakeStats) UpdateDBMetrics() {
	f.poolCalls++
}

func (f *fakeStats) GetStats(_ context.Context) (Stats, error) {
	f.calls++
	return f.stats, f.err
}

func TestCollectorCollect(t *testing.T) {
	provider := &fakeStats{stats: Stats{Images: 9, Models: 2, Textures: 1, Other: 4, Favorites: 3, Tags: 5, Folders: 2, Deleted: 1, Collections: 6}}
	c := NewCollector(provider, time.Hour)
	c.collect(context.Background())

	if got := valueOf(t, AssetsTotal.WithLabelValues("image")); got != 9 {
		t.Errorf("image gauge = %v, want 9", got)
	}
	if got := valueOf(t, FavoritesTotal); got != 3 {
		t.Errorf("favorites gauge = %v, want 3", got)
	}
	if got := valueOf(t, CollectionsTotal); got != 6 {
		t.Errorf("collections gauge = %v, want 6", got)
	}
	if provider.poolCalls != 1 {
		t.Errorf("UpdateDBMetrics called %d times, want 1", provider.poolCalls)
	}
}

func TestCollectorKeepsGaugesOnError(t *testing.T) {
	TagsTotal.Set(11)
	c := NewCollector(&fakeStats{err: errors.New("db closed")}, time.Hour)
	c.collect(context.Background())

	if got := valueOf(t, TagsTotal); got != 11 {
		t.Errorf("tags gauge = %v, want unchanged 11", got)
	}
}

func TestCollectorRunStopsOnCancel(t *testing.T) {
	provider := &fakeStats{}
	c := NewCollector(provider, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()
	before := valueOf(t, FilesystemOperationErrors.WithLabelValues("library", "stat"))
	obs.ObserveOperation("library", "stat", 0.01, errors.New("boom"))
	obs.ObserveOperation("library", "stat", 0.01, nil)
	after := valueOf(t, FilesystemOperationErrors.WithLabelValues("library", "stat"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}

func TestInitializeMetrics(_ *testing.T) {
	InitializeMetrics()
	SetAppInfo("dev", "abc", "go1.25")
}
