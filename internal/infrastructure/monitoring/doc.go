// Package monitoring provides Prometheus metrics collection and the HTTP
// middleware that feeds it.
package monitoring
