package main

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"art-vault/internal/handlers"
	"art-vault/internal/scanner"
	"art-vault/internal/startup"
)

func TestBuildHandlerPassesThrough(t *testing.T) {
	router := http.NewServeMux()
	router.HandleFunc("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	handler := buildHandler(router, &startup.Config{LogHealthChecks: true})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != `{"status":"ok"}` {
		t.Errorf("Unexpected body %q", rr.Body.String())
	}
}

func TestBuildHandlerCompressesLargeResponses(t *testing.T) {
	body := strings.Repeat(`{"k":"v"}`, 500)
	router := http.NewServeMux()
	router.HandleFunc("/api/big", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	handler := buildHandler(router, &startup.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", got)
	}
	if rr.Body.Len() >= len(body) {
		t.Errorf("Expected compressed body smaller than %d, got %d", len(body), rr.Body.Len())
	}
}

func TestMetricsServerRoutes(t *testing.T) {
	srv := newMetricsServer("0")

	tests := []struct {
		path string
		want int
	}{
		{"/metrics", http.StatusOK},
		{"/health", http.StatusOK},
		{"/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, "test server") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeReportsListenError(t *testing.T) {
	srv := &http.Server{Addr: "not-a-valid-address", Handler: http.NewServeMux()}

	err := serve(context.Background(), srv, "test server")
	if err == nil {
		t.Error("Expected listen error")
	}
}

func TestAPIServerShutdownEndsEventStreams(t *testing.T) {
	sc := scanner.New(nil, nil, nil, nil, time.Hour)
	config := &startup.Config{}
	h := handlers.New(nil, sc, nil, config)
	srv := newAPIServer("", buildHandler(handlers.NewRouter(h), config), sc.Progress())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() { _ = srv.Serve(ln) }()

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/api/scan/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open event stream: %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "event: status") {
		t.Fatalf("Expected initial status event, got %q (%v)", line, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Expected clean shutdown with an open stream, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Shutdown took %v with an open stream", elapsed)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
}
