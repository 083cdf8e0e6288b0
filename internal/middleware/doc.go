// Package middleware provides the HTTP middleware art-vault wraps its router
// in: W3C Extended Log Format access logging, Prometheus request metrics and
// gzip response compression.
package middleware
