/*
Package filesystem wraps os.Stat, os.Open and os.ReadDir with retry logic for
NFS stale file handle (ESTALE) errors, which are common when art libraries
live on network shares.

Only ESTALE triggers a retry; every other error is returned immediately.
Defaults are 3 retries with exponential backoff from 50ms capped at 500ms.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Metrics are reported through an [Observer] registered with [SetObserver];
the metrics package provides one. Paths are labelled by volume using a
[VolumeResolver]; paths outside configured volumes are labelled "library".
*/
package filesystem
