// Package handlers provides the HTTP handlers of the medialist daemon.
//
// It includes handlers for:
//   - Health, liveness and readiness probes
//   - Triggering a library scan and polling its progress
//   - Paged catalog listing, item lookup and catalog stats
//   - Version information and Prometheus metrics
package handlers
