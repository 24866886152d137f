// Command medialistd runs the medialist library scanner as a daemon.
//
// On start it loads configuration from the environment (see package
// [medialist/internal/startup]), opens the SQLite catalog, optionally runs an
// initial scan of every LIBRARY_ROOTS entry and then rescans every
// SCAN_INTERVAL. Scans are guarded by an advisory lock file next to the
// catalog so the medialist CLI and the daemon never scan into the same
// catalog at once.
//
// # HTTP Endpoints
//
//   - GET /healthz, /livez, /readyz: health probes; /readyz is ready once the initial scan finished
//   - GET /version: build information
//   - GET /metrics: Prometheus metrics (METRICS_ENABLED)
//   - POST /api/scan: start a scan; 202 accepted, 409 if one is already running
//   - GET /api/scan/progress: live progress snapshot
//   - GET /api/library: paged catalog listing (sort, order, status, search, page, pageSize)
//   - GET /api/library/{id}: one catalog item
//   - GET /api/stats: counts by status and per-root scan history
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM stop the HTTP server, cancel any running scan, stop the
// metrics collector and close the database.
package main
