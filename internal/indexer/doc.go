// Package indexer implements the library scanner: it crawls the configured
// library roots, decides which files are movies, and records them in the
// catalog.
//
// Each directory entry is classified as one of:
//   - hidden: name starts with '.'; never descended into
//   - symlink: never followed, whatever it points to
//   - directory: crawled after its parent has been fully classified
//   - interesting: regular file of at least MinMovieSize bytes with an
//     allowed extension; written to the catalog
//   - boring: regular file smaller than MinMovieSize
//   - unclassified: large enough, but with another extension
//   - unusual: devices, sockets, fifos
//
// Hidden entries, symlinks and boring files count towards a directory's
// "boring" total, interesting files towards its "interesting" total, and
// everything else towards neither. A directory is too boring when it has no
// interesting entries and more than five boring ones; its subdirectories are
// skipped only when both it and its parent are too boring. Recursion stops at
// MaxSearchDepth, with roots at depth 1.
//
// The crawl uses an explicit stack rather than recursion. Catalog writes are
// idempotent and keyed by the file's canonical path, so repeated scans never
// create duplicate rows.
//
// Scans run one at a time per Indexer. Listing, metadata and catalog errors
// are collected in ScanProgress.Errors and never abort a scan. Progress is
// reported to an Observer every ten entries, for every added file, and once
// at completion; EventChannel adapts those events to a bounded channel.
package indexer
