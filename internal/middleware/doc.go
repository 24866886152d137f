// Package middleware provides HTTP middleware for the medialist daemon.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with route-template path labels
//   - Gzip compression of JSON and text responses
package middleware
