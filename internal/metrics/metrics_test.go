package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricNamesUsePrefix(t *testing.T) {
	collectors := map[string]prometheus.Collector{
		"ScanRunsTotal":         ScanRunsTotal,
		"ScanRunning":           ScanRunning,
		"ScanEntriesProcessed":  ScanEntriesProcessed,
		"ScanFilesIngested":     ScanFilesIngested,
		"ScanErrors":            ScanErrors,
		"ScanDirectoriesPruned": ScanDirectoriesPruned,
		"DBQueryTotal":          DBQueryTotal,
		"CatalogItemsTotal":     CatalogItemsTotal,
		"HTTPRequestsTotal":     HTTPRequestsTotal,
	}

	InitializeMetrics()

	for name, c := range collectors {
		t.Run(name, func(t *testing.T) {
			ch := make(chan *prometheus.Desc, 4)
			c.Describe(ch)
			close(ch)
			for desc := range ch {
				if !strings.Contains(desc.String(), `fqName: "medialist_`) {
					t.Errorf("%s has unexpected descriptor %s", name, desc.String())
				}
			}
		})
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	if got := testutil.CollectAndCount(ScanErrors); got != len(scanErrorKinds) {
		t.Errorf("ScanErrors series = %d, want %d", got, len(scanErrorKinds))
	}
	if got := testutil.CollectAndCount(ScanRunsTotal); got != len(scanOutcomes) {
		t.Errorf("ScanRunsTotal series = %d, want %d", got, len(scanOutcomes))
	}
	if got := testutil.CollectAndCount(ScanEntriesClassified); got != len(entryClasses) {
		t.Errorf("ScanEntriesClassified series = %d, want %d", got, len(entryClasses))
	}
	if got := testutil.CollectAndCount(FilesystemStaleErrors); got != len(filesystemOps) {
		t.Errorf("FilesystemStaleErrors series = %d, want %d", got, len(filesystemOps))
	}
}

func TestInitializeMetricsIsIdempotent(t *testing.T) {
	InitializeMetrics()
	before := testutil.CollectAndCount(DBQueryTotal)
	InitializeMetrics()
	after := testutil.CollectAndCount(DBQueryTotal)

	if before != after {
		t.Errorf("series count changed from %d to %d after second initialization", before, after)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")

	got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25"))
	if got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}
