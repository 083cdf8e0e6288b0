package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"art-vault/internal/database"
	"art-vault/internal/filesystem"
	"art-vault/internal/handlers"
	"art-vault/internal/logging"
	"art-vault/internal/media"
	"art-vault/internal/memory"
	"art-vault/internal/metrics"
	"art-vault/internal/middleware"
	"art-vault/internal/scanner"
	"art-vault/internal/startup"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 30 * time.Second
	metricsInterval   = time.Minute
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	startTime := time.Now()
	defer logging.Sync()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"database": filepath.Dir(config.DatabasePath),
		"cache":    config.ThumbnailDir,
	}))
	build := startup.GetBuildInfo()
	metrics.SetAppInfo(build.Version, build.Commit, build.GoVersion)
	metrics.InitializeMetrics()

	useVips := false
	if config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips unavailable, falling back to pure Go thumbnails: %v", err)
		} else {
			useVips = true
			defer media.ShutdownVips()
		}
	}
	startup.LogVipsInit(useVips)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath, &database.Options{BlockedExtensions: config.BlockedExtensions})
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	extractor := media.NewExtractor(media.ExtractorConfig{
		ThumbnailDir:    config.ThumbnailDir,
		PlaceholderPath: config.PlaceholderThumbnail,
		ThumbnailWidth:  config.ThumbnailWidth,
		HashEnabled:     config.HashingEnabled,
		HashMaxBytes:    config.HashMaxFileSize,
		UseVips:         useVips,
	})

	startup.LogScannerInit(config.ScanInterval, config.HashingEnabled, config.HashMaxFileSize)
	sc := scanner.New(db, extractor, nil, nil, config.ScanInterval)
	monitor := memory.NewMonitor(memory.DefaultConfig())
	sc.SetGate(monitor)

	h := handlers.New(db, sc, extractor, config)
	h.SetMemoryStatus(monitor)
	router := handlers.NewRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := newAPIServer(":"+config.Port, buildHandler(router, config), sc.Progress())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return monitor.Run(gctx)
	})

	g.Go(func() error {
		startup.LogScannerStarted()
		return sc.Run(gctx)
	})

	g.Go(func() error {
		return serve(gctx, srv, "HTTP server")
	})

	if config.MetricsEnabled {
		metricsSrv := newMetricsServer(config.MetricsPort)
		g.Go(func() error {
			return serve(gctx, metricsSrv, "Metrics server")
		})
		g.Go(func() error {
			return metrics.NewCollector(db, metricsInterval).Run(gctx)
		})
	}

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	<-gctx.Done()
	reason := "signal received"
	if ctx.Err() == nil {
		reason = "component failure"
	}
	startup.LogShutdownInitiated(reason)

	if err := g.Wait(); err != nil {
		logging.Error("Shutdown after error: %v", err)
		logging.Sync()
		os.Exit(1)
	}
	startup.LogShutdownComplete()
}

// buildHandler wraps the router in the middleware chain. Compression runs
// innermost so the access log records compressed sizes.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(router)
	handler = middleware.Logger(loggingConfig)(handler)
	return middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
}

// newAPIServer builds the API server. Shutdown closes the progress
// broadcaster so open event streams end instead of holding the drain.
func newAPIServer(addr string, handler http.Handler, progress *scanner.Broadcaster) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		// Event streams stay open, so no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  idleTimeout,
	}
	srv.RegisterOnShutdown(progress.Close)
	return srv
}

func newMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, name string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("%s shutdown error: %v", name, err)
		return nil
	}
	startup.LogShutdownStepComplete(name + " stopped")
	return nil
}
