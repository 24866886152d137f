package metrics

// Label values shared with the packages that record them.
var (
	scanOutcomes      = []string{"completed", "cancelled", "rejected"}
	scanErrorKinds    = []string{"access", "stat", "ingest"}
	entryClasses      = []string{"hidden", "symlink", "directory", "interesting", "boring", "unclassified", "unusual"}
	filesystemOps     = []string{"readdir", "lstat", "stat", "realpath"}
	catalogOperations = []string{"ensure_schema", "drop_all", "upsert_if_absent", "get_item",
		"list_items", "count_items", "count_by_status", "update_scan_state", "scan_states"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range scanOutcomes {
		ScanRunsTotal.WithLabelValues(outcome)
	}

	for _, kind := range scanErrorKinds {
		ScanErrors.WithLabelValues(kind)
	}

	for _, class := range entryClasses {
		ScanEntriesClassified.WithLabelValues(class)
	}

	for _, op := range filesystemOps {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemOperationDuration.WithLabelValues(op)
	}

	for _, op := range catalogOperations {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	CatalogItemsTotal.WithLabelValues("pending")
}
