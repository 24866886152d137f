package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"medialist/internal/mediatypes"
)

// Integration tests for catalog operations with a real SQLite database

func setupTestDB(t testing.TB) (db *Database, dbPath string) {
	t.Helper()

	dbPath = filepath.Join(t.TempDir(), "test.db")

	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db, dbPath
}

func newItem(path string, size int64) *LibraryItem {
	return &LibraryItem{
		Path:       path,
		Basename:   filepath.Base(path),
		Size:       size,
		ModifiedAt: time.Unix(1700000000, 0),
	}
}

func insertItems(t *testing.T, db *Database, items ...*LibraryItem) {
	t.Helper()
	for _, item := range items {
		inserted, err := db.UpsertIfAbsent(context.Background(), item)
		if err != nil {
			t.Fatalf("UpsertIfAbsent(%s) failed: %v", item.Path, err)
		}
		if !inserted {
			t.Fatalf("UpsertIfAbsent(%s) reported duplicate", item.Path)
		}
	}
}

func TestNewDatabase(t *testing.T) {
	db, dbPath := setupTestDB(t)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0 for a fresh catalog", n)
	}
}

func TestNewDatabaseMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "test.db")

	db, err := New(context.Background(), dbPath)
	if err == nil {
		_ = db.Close()
		t.Fatal("New() should fail when the parent directory does not exist")
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	insertItems(t, db, newItem("/lib/a.mp4", 100))

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema() failed: %v", err)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1 (EnsureSchema must not drop data)", n)
	}
}

func TestSecondaryIndexesExist(t *testing.T) {
	db, _ := setupTestDB(t)

	want := []string{"idx_library_status", "idx_library_size", "idx_library_modified", "idx_library_added"}
	for _, name := range want {
		var found int
		err := db.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", name,
		).Scan(&found)
		if err != nil {
			t.Fatalf("index lookup failed: %v", err)
		}
		if found != 1 {
			t.Errorf("index %s missing", name)
		}
	}
}

func TestUpsertIfAbsent(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	item := newItem("/lib/a.mp4", 52428800)
	inserted, err := db.UpsertIfAbsent(ctx, item)
	if err != nil {
		t.Fatalf("UpsertIfAbsent() failed: %v", err)
	}
	if !inserted {
		t.Fatal("first insert should report inserted=true")
	}
	if item.ID == 0 {
		t.Error("item.ID should be set after insert")
	}
	if item.Status != StatusPending {
		t.Errorf("Status = %q, want %q", item.Status, StatusPending)
	}

	got, err := db.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() failed: %v", err)
	}
	if got.Path != "/lib/a.mp4" || got.Basename != "a.mp4" || got.Size != 52428800 {
		t.Errorf("GetItem() = %+v", got)
	}
	if got.Status != StatusPending {
		t.Errorf("stored status = %q, want pending", got.Status)
	}
	if !got.ModifiedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ModifiedAt = %v", got.ModifiedAt)
	}
	if got.AddedAt.IsZero() {
		t.Error("AddedAt should be set")
	}
}

func TestUpsertIfAbsentDuplicateIsSilent(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	first := newItem("/lib/a.mp4", 100)
	first.Status = "fingerprinted"
	insertItems(t, db, first)

	second := newItem("/lib/a.mp4", 999)
	inserted, err := db.UpsertIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("duplicate insert returned error: %v", err)
	}
	if inserted {
		t.Error("duplicate insert should report inserted=false")
	}

	got, err := db.GetItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetItem() failed: %v", err)
	}
	if got.Size != 100 || got.Status != "fingerprinted" {
		t.Errorf("existing row was modified: %+v", got)
	}

	n, _ := db.Count(ctx)
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestUpsertIfAbsentRejectsEmptyPath(t *testing.T) {
	db, _ := setupTestDB(t)

	if _, err := db.UpsertIfAbsent(context.Background(), &LibraryItem{}); err == nil {
		t.Error("UpsertIfAbsent() should reject an item without a path")
	}
	if _, err := db.UpsertIfAbsent(context.Background(), nil); err == nil {
		t.Error("UpsertIfAbsent() should reject a nil item")
	}
}

func TestUpsertIfAbsentConcurrent(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	insertedCount := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := db.UpsertIfAbsent(ctx, newItem("/lib/same.mkv", 1))
			if err != nil {
				t.Errorf("UpsertIfAbsent() failed: %v", err)
				return
			}
			if inserted {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if insertedCount != 1 {
		t.Errorf("inserted %d times, want exactly 1", insertedCount)
	}
}

func TestGetItemNotFound(t *testing.T) {
	db, _ := setupTestDB(t)

	_, err := db.GetItem(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetItem() error = %v, want ErrNotFound", err)
	}
}

func TestListItems(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	c := newItem("/lib/c.mkv", 300)
	a := newItem("/lib/a.mp4", 200)
	b := newItem("/lib/sub/B.avi", 100)
	b.Status = "fingerprinted"
	insertItems(t, db, c, a, b)

	t.Run("default sort by path", func(t *testing.T) {
		res, err := db.ListItems(ctx, ListOptions{})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		assertPaths(t, res.Items, "/lib/a.mp4", "/lib/c.mkv", "/lib/sub/B.avi")
		if res.TotalItems != 3 || res.TotalPages != 1 || res.Page != 1 || res.PageSize != defaultPageSize {
			t.Errorf("unexpected paging: %+v", res)
		}
	})

	t.Run("size descending", func(t *testing.T) {
		res, err := db.ListItems(ctx, ListOptions{SortField: mediatypes.SortBySize, SortOrder: mediatypes.SortDesc})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		assertPaths(t, res.Items, "/lib/c.mkv", "/lib/a.mp4", "/lib/sub/B.avi")
	})

	t.Run("basename is case insensitive", func(t *testing.T) {
		res, err := db.ListItems(ctx, ListOptions{SortField: mediatypes.SortByBasename})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		assertPaths(t, res.Items, "/lib/a.mp4", "/lib/sub/B.avi", "/lib/c.mkv")
	})

	t.Run("status filter", func(t *testing.T) {
		res, err := db.ListItems(ctx, ListOptions{Status: "fingerprinted"})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		assertPaths(t, res.Items, "/lib/sub/B.avi")
		if res.TotalItems != 1 {
			t.Errorf("TotalItems = %d, want 1", res.TotalItems)
		}
	})

	t.Run("search matches basename only", func(t *testing.T) {
		res, err := db.ListItems(ctx, ListOptions{Search: "sub"})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		if len(res.Items) != 0 {
			t.Errorf("search should not match directory names, got %d items", len(res.Items))
		}

		res, err = db.ListItems(ctx, ListOptions{Search: "b.a"})
		if err != nil {
			t.Fatalf("ListItems() failed: %v", err)
		}
		assertPaths(t, res.Items, "/lib/sub/B.avi")
	})
}

func TestListItemsPaging(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		insertItems(t, db, newItem(fmt.Sprintf("/lib/%02d.mp4", i), int64(i)))
	}

	res, err := db.ListItems(ctx, ListOptions{Page: 3, PageSize: 3})
	if err != nil {
		t.Fatalf("ListItems() failed: %v", err)
	}
	if res.TotalItems != 7 || res.TotalPages != 3 {
		t.Errorf("TotalItems=%d TotalPages=%d, want 7 and 3", res.TotalItems, res.TotalPages)
	}
	assertPaths(t, res.Items, "/lib/06.mp4")

	res, err = db.ListItems(ctx, ListOptions{PageSize: 10000})
	if err != nil {
		t.Fatalf("ListItems() failed: %v", err)
	}
	if res.PageSize != maxPageSize {
		t.Errorf("PageSize = %d, want clamp to %d", res.PageSize, maxPageSize)
	}
}

func TestCountByStatus(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	done := newItem("/lib/done.mkv", 1)
	done.Status = "fingerprinted"
	insertItems(t, db, newItem("/lib/a.mp4", 1), newItem("/lib/b.mp4", 1), done)

	counts, err := db.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() failed: %v", err)
	}
	if counts[StatusPending] != 2 || counts["fingerprinted"] != 1 || len(counts) != 2 {
		t.Errorf("CountByStatus() = %v", counts)
	}
}

func TestDropAllThenEnsureSchema(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	insertItems(t, db, newItem("/lib/a.mp4", 1))
	if err := db.UpdateScanState(ctx, ScanState{Root: "/lib", FilesFound: 1}); err != nil {
		t.Fatalf("UpdateScanState() failed: %v", err)
	}

	if err := db.DropAll(ctx); err != nil {
		t.Fatalf("DropAll() failed: %v", err)
	}
	if _, err := db.Count(ctx); err == nil {
		t.Error("Count() should fail while the schema is dropped")
	}

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() failed: %v", err)
	}
	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d after rebuild, want 0", n)
	}
	states, err := db.ScanStates(ctx)
	if err != nil {
		t.Fatalf("ScanStates() failed: %v", err)
	}
	if len(states) != 0 {
		t.Errorf("ScanStates() = %v after rebuild, want none", states)
	}

	insertItems(t, db, newItem("/lib/a.mp4", 1))
}

func TestScanState(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	first := time.Unix(1700000000, 0)
	if err := db.UpdateScanState(ctx, ScanState{Root: "/movies", LastScan: first, FilesFound: 3, ErrorCount: 1}); err != nil {
		t.Fatalf("UpdateScanState() failed: %v", err)
	}
	if err := db.UpdateScanState(ctx, ScanState{Root: "/anime", LastScan: first, FilesFound: 9}); err != nil {
		t.Fatalf("UpdateScanState() failed: %v", err)
	}

	later := first.Add(time.Hour)
	if err := db.UpdateScanState(ctx, ScanState{Root: "/movies", LastScan: later, FilesFound: 5}); err != nil {
		t.Fatalf("UpdateScanState() failed: %v", err)
	}

	states, err := db.ScanStates(ctx)
	if err != nil {
		t.Fatalf("ScanStates() failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("ScanStates() returned %d rows, want 2", len(states))
	}
	if states[0].Root != "/anime" || states[1].Root != "/movies" {
		t.Errorf("states not ordered by root: %+v", states)
	}
	movies := states[1]
	if !movies.LastScan.Equal(later) || movies.FilesFound != 5 || movies.ErrorCount != 0 {
		t.Errorf("movies state not replaced: %+v", movies)
	}
}

func TestUpdateDBMetrics(t *testing.T) {
	db, _ := setupTestDB(t)

	// Exercises the pool stats path; value depends on pool state.
	db.UpdateDBMetrics()
}

func assertPaths(t *testing.T, items []LibraryItem, want ...string) {
	t.Helper()
	if len(items) != len(want) {
		got := make([]string, len(items))
		for i, it := range items {
			got[i] = it.Path
		}
		t.Fatalf("got paths %v, want %v", got, want)
	}
	for i := range want {
		if items[i].Path != want[i] {
			t.Errorf("items[%d].Path = %q, want %q", i, items[i].Path, want[i])
		}
	}
}
