// Package main provides the entry point for the Art Vault server.
//
// Art Vault indexes folders of art assets (images, 3D models, textures) into
// a SQLite library and serves a REST API for browsing, tagging, rating and
// organizing them into collections.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads CONFIG_FILE (optional YAML) and environment
//     variables, and prepares the database and thumbnail directories
//  2. libvips Initialization: used for WebP thumbnails when available
//  3. Database Initialization: opens SQLite and applies the schema
//  4. Component Initialization:
//     - Metadata Extractor: dimensions, dominant colour, hashes, thumbnails
//     - Scanner: periodic and on-demand folder scans
//     - Metrics Collector: library gauges for Prometheus
//  5. HTTP Server Setup: routes, middleware, then serve
//  6. Graceful Shutdown: SIGINT/SIGTERM stop every component
//
// # Background Services
//
//   - Scanner: scans every active folder on start, then on each interval and
//     whenever a scan is requested through the API
//   - Metrics Collector: refreshes library gauges every minute
//   - Memory Monitor: pauses the scanner while the heap is near its limit
//
// # HTTP Servers
//
//  1. Main Server (default port 8080): REST API under /api, scan progress as
//     Server-Sent Events, thumbnails, health probes
//  2. Metrics Server (default port 9090, optional): /metrics and /health
//
// # Environment Variables
//
//   - CACHE_DIR: thumbnail cache root (default: /cache)
//   - DATABASE_DIR: SQLite directory (default: /database)
//   - THUMBNAIL_DIR: thumbnail directory (default: $CACHE_DIR/thumbnails)
//   - PLACEHOLDER_THUMBNAIL: image served for assets without a thumbnail
//   - THUMBNAIL_WIDTH: thumbnail width in pixels (default: 400)
//   - PORT: main server port (default: 8080)
//   - METRICS_PORT: metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - SCAN_INTERVAL: time between scheduled scans (default: 5m)
//   - HASHING_ENABLED: compute SHA-256 content hashes (default: false)
//   - HASH_MAX_FILE_SIZE: files of this size or larger are not hashed, in bytes
//   - BLOCKED_EXTENSIONS: extensions that can never be scanned
//   - VIPS_ENABLED: use libvips when available (default: true)
//   - LOG_LEVEL: debug, info, warn or error
//   - MEMORY_LIMIT, MEMORY_RATIO: derive GOMEMLIMIT from a container limit
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the scanner abandons the current file, the HTTP
// servers drain for up to 30 seconds, and the database is closed. A failure
// in any component also triggers shutdown and a non-zero exit.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips:
//
//	go build -o art-vault ./cmd/art-vault
package main
