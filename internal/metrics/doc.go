// Package metrics provides Prometheus instrumentation for medialist.
//
// All metrics are prefixed with "medialist_" and registered on the default
// registry through promauto, so importing the package is enough to have them
// exported by promhttp.Handler().
//
// # Metric Categories
//
// ## Scanner Metrics
//
// Track library scans and the crawler's decisions:
//   - ScanRunsTotal: Counter of scans by outcome (completed, cancelled, rejected)
//   - ScanRunning: Gauge indicating if a scan is active
//   - ScanLastRunTimestamp / ScanLastRunDuration: Gauges for the last scan
//   - ScanEntriesProcessed: Counter of directory entries visited
//   - ScanEntriesClassified: Counter of entries by classification
//   - ScanFilesIngested / ScanFilesAlreadyKnown: Counters of catalog writes
//   - ScanErrors: Counter of non-fatal errors by kind (access, stat, ingest)
//   - ScanDirectoriesPruned / ScanDirectoriesDepthLimited: Counters of skipped subtrees
//   - ScanDirectoryDuration: Histogram of per-directory crawl time
//
// ## Catalog Metrics
//
//   - DBQueryTotal / DBQueryDuration: Query count and latency by operation
//   - DBConnectionsOpen: Open connections in the pool
//   - CatalogItemsTotal: Catalogued items by processing status (set by Collector)
//
// ## Filesystem Metrics
//
// Stale file handle (ESTALE) retries performed by the filesystem package,
// labelled by operation (readdir, lstat, stat, realpath).
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// # Usage
//
//	metrics.InitializeMetrics()
//	collector := metrics.NewCollector(db, time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
