package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestMonitor(limit int64, alloc *atomic.Uint64) *Monitor {
	m := NewMonitor(Config{
		LimitBytes:        limit,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     10 * time.Millisecond,
	})
	m.readMem = alloc.Load
	return m
}

func TestMonitorGate(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(1000, &alloc)

	steps := []struct {
		alloc      uint64
		wantPaused bool
	}{
		{500, false},
		{849, false},
		{850, true},
		{800, true}, // between the watermarks the gate stays closed
		{699, false},
		{900, true},
	}
	for _, step := range steps {
		alloc.Store(step.alloc)
		m.check()
		if got := m.Paused(); got != step.wantPaused {
			t.Errorf("alloc %d: Paused() = %v, want %v", step.alloc, got, step.wantPaused)
		}
	}

	current, limit, usage := m.Stats()
	if current != 900 || limit != 1000 || usage != 0.9 {
		t.Errorf("Stats() = %d, %d, %v", current, limit, usage)
	}
}

func TestWaitOpenGateReturnsImmediately(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(1000, &alloc)

	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestWaitBlocksUntilRecovered(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(1000, &alloc)
	alloc.Store(950)
	m.check()

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("Wait returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	alloc.Store(100)
	m.check()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil after recovery, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after recovery")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(1000, &alloc)
	alloc.Store(950)
	m.check()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestRunOpensGateOnStop(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(1000, &alloc)
	alloc.Store(950)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- m.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !m.Paused() {
		if time.Now().After(deadline) {
			t.Fatal("Monitor never paused")
		}
		time.Sleep(5 * time.Millisecond)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- m.Wait(context.Background()) }()

	cancel()
	if err := <-runDone; err != nil {
		t.Errorf("Run returned %v", err)
	}
	select {
	case err := <-waitDone:
		if err != nil {
			t.Errorf("Expected waiter released cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Waiter not released when monitor stopped")
	}
}
