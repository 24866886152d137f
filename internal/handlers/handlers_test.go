package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"medialist/internal/database"
	"medialist/internal/indexer"
)

// mockScanner stands in for the indexer.
type mockScanner struct {
	mu         sync.Mutex
	triggerErr error
	triggered  int
	scanning   bool
	ready      bool
	progress   indexer.ScanProgress
	health     indexer.HealthStatus
}

func newMockScanner() *mockScanner {
	return &mockScanner{
		ready:    true,
		progress: indexer.ScanProgress{Errors: []string{}},
		health: indexer.HealthStatus{
			Ready:     true,
			StartTime: time.Now(),
			Uptime:    "1s",
		},
	}
}

func (m *mockScanner) TriggerScan() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.triggerErr != nil {
		return m.triggerErr
	}
	m.triggered++
	return nil
}

func (m *mockScanner) IsScanning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanning
}

func (m *mockScanner) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockScanner) Progress() indexer.ScanProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

func (m *mockScanner) GetHealthStatus() indexer.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// failingCatalog returns err from every call.
type failingCatalog struct{ err error }

func (f failingCatalog) ListItems(context.Context, database.ListOptions) (*database.ListResult, error) {
	return nil, f.err
}

func (f failingCatalog) GetItem(context.Context, int64) (*database.LibraryItem, error) {
	return nil, f.err
}

func (f failingCatalog) Count(context.Context) (int, error) { return 0, f.err }

func (f failingCatalog) CountByStatus(context.Context) (map[string]int, error) {
	return nil, f.err
}

func (f failingCatalog) ScanStates(context.Context) ([]database.ScanState, error) {
	return nil, f.err
}

var errCatalogDown = errors.New("catalog unavailable")

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedItems inserts one item per path with sizes 1, 2, 3 ... in order.
func seedItems(t *testing.T, db *database.Database, paths ...string) []*database.LibraryItem {
	t.Helper()

	items := make([]*database.LibraryItem, 0, len(paths))
	for i, p := range paths {
		item := &database.LibraryItem{
			Path:       p,
			Basename:   filepath.Base(p),
			Size:       int64(i + 1),
			ModifiedAt: time.Unix(int64(1700000000+i), 0),
		}
		if _, err := db.UpsertIfAbsent(context.Background(), item); err != nil {
			t.Fatalf("UpsertIfAbsent(%s) failed: %v", p, err)
		}
		items = append(items, item)
	}
	return items
}
