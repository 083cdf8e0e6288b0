// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads an optional YAML file named by CONFIG_FILE and then the
// environment; environment variables override file values. Supported keys:
//
//   - CACHE_DIR: cache root (default: /cache)
//   - THUMBNAIL_DIR: generated thumbnails (default: $CACHE_DIR/thumbnails)
//   - PLACEHOLDER_THUMBNAIL: fallback thumbnail path (default: static/placeholder.png)
//   - THUMBNAIL_WIDTH: thumbnail width in pixels (default: 400)
//   - DATABASE_DIR: SQLite database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - SCAN_INTERVAL: time between scheduled scans (default: 5m)
//   - HASHING_ENABLED: compute SHA-256 content hashes (default: false)
//   - HASH_MAX_FILE_SIZE: skip hashing at or above this many bytes (default: 100 MiB)
//   - BLOCKED_EXTENSIONS: comma separated deny-list for the extension allow-list
//   - VIPS_ENABLED: try libvips for thumbnails (default: true)
//   - LOG_LEVEL, LOG_FORMAT, LOG_STATIC_FILES, LOG_HEALTH_CHECKS
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
