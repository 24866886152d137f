package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"medialist/internal/filesystem"
	"medialist/internal/indexer"
	"medialist/internal/scanlock"
)

func TestTriggerScan(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "Accepted", wantCode: http.StatusAccepted},
		{name: "Already scanning", err: indexer.ErrScanInProgress, wantCode: http.StatusConflict},
		{name: "Locked by another process", err: scanlock.ErrScanLocked, wantCode: http.StatusConflict},
		{name: "Unexpected failure", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := newMockScanner()
			scanner.triggerErr = tt.err
			h := New(setupTestDB(t), scanner)

			w := httptest.NewRecorder()
			h.TriggerScan(w, httptest.NewRequest(http.MethodPost, "/api/scan", http.NoBody))

			if w.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.err == nil && scanner.triggered != 1 {
				t.Errorf("triggered = %d, want 1", scanner.triggered)
			}
		})
	}
}

func TestGetScanProgress(t *testing.T) {
	scanner := newMockScanner()
	scanner.scanning = true
	scanner.progress = indexer.ScanProgress{
		ProcessedFiles: 12,
		FoundFiles:     2,
		TotalFiles:     2,
		CurrentFile:    "/lib/sub",
		Errors:         []string{"Failed to read: /lib/locked"},
	}
	h := New(setupTestDB(t), scanner)

	w := httptest.NewRecorder()
	h.GetScanProgress(w, httptest.NewRequest(http.MethodGet, "/api/scan/progress", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response ScanProgressResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Scanning {
		t.Error("Expected scanning=true")
	}
	if response.Progress.ProcessedFiles != 12 || response.Progress.FoundFiles != 2 {
		t.Errorf("progress = %+v", response.Progress)
	}
	if len(response.Progress.Errors) != 1 || response.Progress.Errors[0] != "Failed to read: /lib/locked" {
		t.Errorf("errors = %v", response.Progress.Errors)
	}
}

func TestGetScanProgressEmptyErrorsIsArray(t *testing.T) {
	scanner := newMockScanner()
	scanner.progress = indexer.ScanProgress{}
	h := New(setupTestDB(t), scanner)

	w := httptest.NewRecorder()
	h.GetScanProgress(w, httptest.NewRequest(http.MethodGet, "/api/scan/progress", http.NoBody))

	var raw map[string]map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := raw["progress"]["errors"].([]interface{}); !ok {
		t.Errorf("errors should encode as an array, got %#v", raw["progress"]["errors"])
	}
}

func TestTriggerScanWithIndexer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping scan integration test in short mode")
	}

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "movie.mp4"), make([]byte, 200), 0o644); err != nil {
		t.Fatal(err)
	}

	db := setupTestDB(t)
	idx := indexer.New(db, indexer.Config{
		LibraryRoots:        []string{root},
		VideoFileExtensions: []string{"mp4"},
		MinMovieSize:        100,
		MaxSearchDepth:      3,
	})
	idx.SetRetryConfig(filesystem.RetryConfig{})
	idx.SetLocker(scanlock.ForDatabase(db.Path()))
	defer idx.Stop()
	h := New(db, idx)

	t.Run("held lock is a conflict", func(t *testing.T) {
		other := scanlock.ForDatabase(db.Path())
		if err := other.TryLock(); err != nil {
			t.Fatalf("TryLock() failed: %v", err)
		}
		defer other.Unlock()

		w := httptest.NewRecorder()
		h.TriggerScan(w, httptest.NewRequest(http.MethodPost, "/api/scan", http.NoBody))
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	w := httptest.NewRecorder()
	h.TriggerScan(w, httptest.NewRequest(http.MethodPost, "/api/scan", http.NoBody))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", w.Code)
	}

	deadline := time.Now().Add(5 * time.Second)
	for idx.IsScanning() {
		if time.Now().After(deadline) {
			t.Fatal("scan did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	progress := idx.Progress()
	if progress.FoundFiles != 1 {
		t.Errorf("FoundFiles = %d, want 1", progress.FoundFiles)
	}

	w = httptest.NewRecorder()
	h.ListLibrary(w, httptest.NewRequest(http.MethodGet, "/api/library", http.NoBody))
	var result struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", result.TotalItems)
	}
}
