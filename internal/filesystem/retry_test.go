package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"medialist/internal/metrics"
)

// noSleep disables backoff sleeps for the duration of the test and records them.
func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	original := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = original })
	return &slept
}

func testConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     25 * time.Millisecond,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "fmt wrapped ESTALE", err: fmt.Errorf("listing: %w", syscall.ESTALE), want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isNFSStaleError(tt.err)
			if got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetry_RecoversFromStaleHandle(t *testing.T) {
	slept := noSleep(t)
	successBefore := testutil.ToFloat64(metrics.FilesystemRetrySuccess.WithLabelValues(opStat))

	calls := 0
	got, err := withRetry(opStat, "/mnt/movies", testConfig(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ESTALE
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("withRetry() error = %v, want nil", err)
	}
	if got != 42 {
		t.Errorf("withRetry() = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(*slept) != 2 || (*slept)[0] != 10*time.Millisecond || (*slept)[1] != 20*time.Millisecond {
		t.Errorf("backoff sequence = %v, want [10ms 20ms]", *slept)
	}
	if after := testutil.ToFloat64(metrics.FilesystemRetrySuccess.WithLabelValues(opStat)); after != successBefore+1 {
		t.Errorf("retry success counter = %v, want %v", after, successBefore+1)
	}
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	slept := noSleep(t)
	failuresBefore := testutil.ToFloat64(metrics.FilesystemRetryFailures.WithLabelValues(opLstat))

	calls := 0
	_, err := withRetry(opLstat, "/mnt/movies/a.mkv", testConfig(), func() (os.FileInfo, error) {
		calls++
		return nil, syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v (capped backoff)", i, (*slept)[i], want[i])
		}
	}
	if after := testutil.ToFloat64(metrics.FilesystemRetryFailures.WithLabelValues(opLstat)); after != failuresBefore+1 {
		t.Errorf("retry failure counter = %v, want %v", after, failuresBefore+1)
	}
}

func TestWithRetry_NonStaleErrorFailsFast(t *testing.T) {
	slept := noSleep(t)

	calls := 0
	_, err := withRetry(opReadDir, "/mnt/movies", testConfig(), func() ([]os.DirEntry, error) {
		calls++
		return nil, os.ErrPermission
	})

	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("withRetry() error = %v, want permission error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("should not sleep on non-NFS errors, slept %v", *slept)
	}
}

func TestReadDirWithRetry(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	entries, err := ReadDirWithRetry(dir, testConfig())
	if err != nil {
		t.Fatalf("ReadDirWithRetry() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name() != "a.mp4" || entries[1].Name() != "b.mkv" {
		t.Errorf("entries = [%s %s], want sorted by name", entries[0].Name(), entries[1].Name())
	}

	if _, err := ReadDirWithRetry(filepath.Join(dir, "missing"), testConfig()); !os.IsNotExist(err) {
		t.Errorf("ReadDirWithRetry(missing) error = %v, want not exist", err)
	}
}

func TestLstatWithRetry_DoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.mp4")
	link := filepath.Join(dir, "link.mp4")
	if err := os.WriteFile(target, []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	linfo, err := LstatWithRetry(link, testConfig())
	if err != nil {
		t.Fatalf("LstatWithRetry() error = %v", err)
	}
	if linfo.Mode()&os.ModeSymlink == 0 {
		t.Error("LstatWithRetry() should report the link itself")
	}

	info, err := StatWithRetry(link, testConfig())
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v", err)
	}
	if !info.Mode().IsRegular() || info.Size() != 4 {
		t.Errorf("StatWithRetry() should follow the link, got mode %v size %d", info.Mode(), info.Size())
	}
}

func TestStatWithRetry_NotExist(t *testing.T) {
	start := time.Now()
	info, err := StatWithRetry(filepath.Join(t.TempDir(), "nonexistent.txt"), testConfig())
	elapsed := time.Since(start)

	if info != nil {
		t.Error("StatWithRetry() returned non-nil FileInfo for non-existent file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("StatWithRetry() error = %v, want os.IsNotExist", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Errorf("StatWithRetry took %v, should not retry non-NFS errors", elapsed)
	}
}

func TestRealpathWithRetry(t *testing.T) {
	dir := t.TempDir()
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s): %v", dir, err)
	}

	target := filepath.Join(dir, "movie.mkv")
	link := filepath.Join(dir, "alias.mkv")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := RealpathWithRetry(link, testConfig())
	if err != nil {
		t.Fatalf("RealpathWithRetry() error = %v", err)
	}
	want := filepath.Join(realDir, "movie.mkv")
	if got != want {
		t.Errorf("RealpathWithRetry() = %q, want %q", got, want)
	}

	if _, err := RealpathWithRetry(filepath.Join(dir, "gone.mkv"), testConfig()); err == nil {
		t.Error("RealpathWithRetry() on missing path should fail")
	}
}

func BenchmarkLstatWithRetry_Success(b *testing.B) {
	tmpDir := b.TempDir()
	testFile := filepath.Join(tmpDir, "bench.mp4")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		b.Fatalf("Failed to create test file: %v", err)
	}

	config := DefaultRetryConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = LstatWithRetry(testFile, config)
	}
}

func BenchmarkNativeOsLstat(b *testing.B) {
	tmpDir := b.TempDir()
	testFile := filepath.Join(tmpDir, "bench.mp4")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		b.Fatalf("Failed to create test file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = os.Lstat(testFile)
	}
}
