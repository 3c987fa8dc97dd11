// Package middleware provides HTTP middleware for the transcode service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path cardinality
//   - gzip compression for JSON responses (video bodies are never compressed)
package middleware
