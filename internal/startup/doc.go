// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - LIBRARY_ROOTS: Directories to scan, separated by the OS path-list separator or commas
//   - VIDEO_FILE_EXTENSIONS: Comma list of interesting extensions (default: avi,mp4,mkv,m4v)
//   - MIN_MOVIE_SIZE: Smallest file size in bytes worth cataloguing (default: 52428800)
//   - MAX_SEARCH_DEPTH: Recursion bound below each root, roots are depth 1 (default: 7)
//   - DATABASE_DIR: Directory holding media.db (default: ./data)
//   - PORT: HTTP server port (default: 43590)
//   - SCAN_INTERVAL: Periodic rescan interval as Go duration, 0 disables (default: 0)
//   - SCAN_ON_START: Run a scan when the daemon starts (default: true)
//   - METRICS_ENABLED: Serve /metrics (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// Invalid numeric values fall back to their defaults with a warning. The
// database directory is created if missing and must be writable. Library
// roots are made absolute but a missing root only produces a warning, since
// each scan reports it again.
//
// [Config.ScanConfig] resolves the subset consumed by the scanner.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogDatabaseInit]: Database initialization timing and catalog size
//   - [LogIndexerInit]: Scanner configuration and rescan interval
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: Graceful shutdown
package startup
