package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medialist_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medialist_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_db_queries_total",
			Help: "Total number of catalog database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medialist_db_query_duration_seconds",
			Help:    "Catalog database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medialist_db_connections_open",
			Help: "Number of open catalog database connections",
		},
	)

	CatalogItemsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medialist_catalog_items",
			Help: "Number of catalogued library items by processing status",
		},
		[]string{"status"},
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_scan_runs_total",
			Help: "Total number of library scans by outcome",
		},
		[]string{"outcome"}, // "completed", "cancelled", "rejected"
	)

	ScanRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medialist_scan_running",
			Help: "Whether a library scan is currently running (1 = running, 0 = idle)",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medialist_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed library scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medialist_scan_last_run_duration_seconds",
			Help: "Duration of the last library scan in seconds",
		},
	)

	ScanEntriesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medialist_scan_entries_processed_total",
			Help: "Total number of directory entries visited by the crawler",
		},
	)

	ScanEntriesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_scan_entries_classified_total",
			Help: "Total number of directory entries by classification",
		},
		[]string{"class"},
	)

	ScanFilesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medialist_scan_files_ingested_total",
			Help: "Total number of media files newly added to the catalog",
		},
	)

	ScanFilesAlreadyKnown = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medialist_scan_files_already_known_total",
			Help: "Total number of matching files that were already catalogued",
		},
	)

	ScanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_scan_errors_total",
			Help: "Total number of non-fatal scan errors by kind",
		},
		[]string{"kind"}, // "access", "stat", "ingest"
	)

	ScanDirectoriesPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medialist_scan_directories_pruned_total",
			Help: "Total number of subdirectories skipped by the boring-subtree heuristic",
		},
	)

	ScanDirectoriesDepthLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medialist_scan_directories_depth_limited_total",
			Help: "Total number of subdirectories skipped because of the maximum search depth",
		},
	)

	ScanDirectoryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medialist_scan_directory_duration_seconds",
			Help:    "Time spent listing and classifying a single directory",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries after a stale file handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medialist_filesystem_stale_errors_total",
			Help: "Total number of stale file handle (ESTALE) errors observed",
		},
		[]string{"operation"},
	)

	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medialist_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration including retries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medialist_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
