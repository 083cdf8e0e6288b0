package metrics

// InitializeMetrics pre-populates expected label combinations so that every
// series is exported from the first Prometheus scrape.
func InitializeMetrics() {
	volumes := []string{"library", "cache", "database"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}

	for _, mode := range []string{"manual", "scheduled"} {
		for _, status := range []string{"success", "error", "cancelled", "panic"} {
			ScannerRunsTotal.WithLabelValues(mode, status)
		}
		ScannerTriggersTotal.WithLabelValues(mode, "accepted")
		ScannerTriggersTotal.WithLabelValues(mode, "dropped")
	}

	for _, ft := range []string{"image", "model", "texture", "other"} {
		ScannerAssetsIndexed.WithLabelValues(ft)
		AssetsTotal.WithLabelValues(ft)
	}

	for _, stage := range []string{"stat", "extract", "persist"} {
		ScannerFileErrors.WithLabelValues(stage)
	}

	for _, backend := range []string{"vips", "imaging"} {
		ThumbnailGenerationDuration.WithLabelValues(backend)
		ThumbnailGenerationsTotal.WithLabelValues(backend, "success")
		ThumbnailGenerationsTotal.WithLabelValues(backend, "error")
	}

	for _, format := range []string{"png", "jpeg", "gif", "bmp", "webp", "tiff", "unknown"} {
		ImageDecodeTotal.WithLabelValues(format, "success")
		ImageDecodeTotal.WithLabelValues(format, "error")
	}

	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}
}
