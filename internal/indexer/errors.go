package indexer

import (
	"errors"
	"fmt"
)

// ErrScanInProgress is returned when a scan is requested while another scan
// on the same Indexer is still running.
var ErrScanInProgress = errors.New("scan already in progress")

// ErrorKind classifies non-fatal scan failures.
type ErrorKind string

const (
	// ErrorKindAccess means a root or directory could not be listed.
	ErrorKindAccess ErrorKind = "access"
	// ErrorKindStat means an entry's metadata could not be read.
	ErrorKindStat ErrorKind = "stat"
	// ErrorKindIngest means a matching file could not be written to the catalog.
	ErrorKindIngest ErrorKind = "ingest"
)

// ScanError is a non-fatal failure recorded during a scan. Its Error string
// is what appears in ScanProgress.Errors.
type ScanError struct {
	Kind ErrorKind
	Path string
	// Root is set when Path is a configured library root that could not be
	// opened at all.
	Root bool
	Err  error
}

func (e *ScanError) Error() string {
	var prefix string
	switch {
	case e.Root:
		prefix = "Cannot access"
	case e.Kind == ErrorKindAccess:
		prefix = "Failed to read"
	case e.Kind == ErrorKindStat:
		prefix = "Failed to process"
	default:
		prefix = "Failed to add"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", prefix, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", prefix, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
