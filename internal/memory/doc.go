// Package memory keeps the scanner within the process memory budget.
//
// ConfigureFromEnv sets GOMEMLIMIT from a container limit passed in through
// MEMORY_LIMIT (for example via the Kubernetes Downward API) unless
// GOMEMLIMIT is already set. Monitor samples heap usage against that limit
// and acts as a gate: once usage crosses the critical watermark, Wait blocks
// until usage falls back below the high watermark. The scanner waits on the
// gate before each file so image decoding stops while the heap recovers.
//
// # Environment Variables
//
//   - GOMEMLIMIT: standard Go soft limit, takes precedence when set
//   - MEMORY_LIMIT: container memory limit in bytes
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap (default 0.85)
package memory
