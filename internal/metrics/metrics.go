package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_progress_subscribers",
			Help: "Number of connected scan progress observers",
		},
	)

	ProgressEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "art_vault_progress_events_dropped_total",
			Help: "Progress events dropped because an observer was not keeping up",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_db_transaction_duration_seconds",
			Help:    "Database transaction duration by outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Scanner metrics
var (
	ScannerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_runs_total",
			Help: "Scan iterations by trigger mode and outcome",
		},
		[]string{"mode", "status"},
	)

	ScannerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_scanner_running",
			Help: "Whether a scan iteration is in progress (1) or not (0)",
		},
	)

	ScannerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_scanner_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan iteration",
		},
	)

	ScannerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_scanner_last_run_duration_seconds",
			Help: "Duration of the last completed scan iteration",
		},
	)

	ScannerFilesDiscovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_files_discovered_total",
			Help: "New files found by discovery",
		},
	)

	ScannerAssetsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_assets_indexed_total",
			Help: "Assets recorded by the scanner, by file type",
		},
		[]string{"type"},
	)

	ScannerFileErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_file_errors_total",
			Help: "Per-file failures by stage",
		},
		[]string{"stage"},
	)

	ScannerFolderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_folder_errors_total",
			Help: "Scan folders skipped because they were missing or unreadable",
		},
	)

	ScannerTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_scanner_triggers_total",
			Help: "Scan trigger requests by mode and whether they were accepted or dropped",
		},
		[]string{"mode", "result"},
	)
)

// Thumbnail and extraction metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_thumbnail_generations_total",
			Help: "Thumbnail generations by backend and status",
		},
		[]string{"backend", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration by backend",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	ImageDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_image_decode_total",
			Help: "Image decodes by format and status",
		},
		[]string{"format", "status"},
	)

	HashDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "art_vault_hash_duration_seconds",
			Help:    "Time spent computing content hashes",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)
)

// Library metrics
var (
	AssetsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "art_vault_assets_total",
			Help: "Non-deleted assets by file type",
		},
		[]string{"type"},
	)

	AssetsDeletedTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_assets_deleted_total",
			Help: "Soft-deleted assets awaiting restore or purge",
		},
	)

	FavoritesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_favorites_total",
			Help: "Assets marked as favorite",
		},
	)

	TagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_tags_total",
			Help: "Distinct tags",
		},
	)

	ScanFoldersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_scan_folders_total",
			Help: "Active scan folders",
		},
	)

	CollectionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_collections_total",
			Help: "Material sets",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration by volume and operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_filesystem_operation_errors_total",
			Help: "Filesystem operation errors by volume and operation",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_filesystem_retry_attempts_total",
			Help: "Retries after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "art_vault_filesystem_retry_duration_seconds",
			Help:    "Total time spent in operations that needed retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "art_vault_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "art_vault_memory_paused",
			Help: "1 while the scanner is paused for memory pressure",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "art_vault_memory_pauses_total",
			Help: "Times the scanner was paused for memory pressure",
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "art_vault_app_info",
		Help: "Application information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
