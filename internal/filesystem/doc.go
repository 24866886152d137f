/*
Package filesystem provides resilient filesystem operations with automatic retry logic
for NFS stale file handle errors.

# Purpose

Media libraries frequently live on network mounts. This package wraps the
calls the library scanner depends on (os.ReadDir, os.Lstat, os.Stat and
symlink resolution) with retry logic for ESTALE (stale file handle) errors,
which show up when an NFS export changes underneath a running scan.

# Usage

	entries, err := filesystem.ReadDirWithRetry("/mnt/movies", filesystem.DefaultRetryConfig())

	info, err := filesystem.LstatWithRetry("/mnt/movies/a.mp4", filesystem.DefaultRetryConfig())

	canonical, err := filesystem.RealpathWithRetry("/mnt/movies/link.mkv", filesystem.DefaultRetryConfig())

# Retry Behavior

The retry logic implements exponential backoff with the following defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only NFS stale file handle errors (ESTALE) trigger retries. All other errors
fail immediately without retry attempts.

# Metrics

Every operation records its duration, stale handle occurrences, retries and
final outcome under the medialist_filesystem_* metrics, labelled by operation.
*/
package filesystem
