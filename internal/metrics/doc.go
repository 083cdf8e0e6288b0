// Package metrics provides Prometheus instrumentation for art-vault.
//
// All metrics are prefixed with "art_vault_" and registered with promauto.
//
// Categories:
//   - HTTP: request counts, durations, in-flight requests, progress stream subscribers
//   - Database: query counts and durations, transaction outcomes, open connections
//   - Scanner: runs by mode and outcome, running gauge, discovered files,
//     indexed assets, per-file and per-folder errors, trigger accept/drop counts
//   - Extraction: thumbnail generation by backend, image decodes by format, hash timing
//   - Library: asset totals by type, favorites, tags, folders, collections
//     (refreshed by [Collector])
//   - Filesystem: NFS retry counters, recorded through [NewFilesystemObserver]
package metrics
