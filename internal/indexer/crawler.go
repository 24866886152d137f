package indexer

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"medialist/internal/database"
	"medialist/internal/filesystem"
	"medialist/internal/logging"
	"medialist/internal/metrics"
)

// frame is one directory waiting to be crawled.
type frame struct {
	path        string
	depth       int
	parentStats directoryStats
}

// crawler walks library roots for a single scan run. It owns the run's
// progress record; nothing else writes to it.
type crawler struct {
	store      CatalogStore
	classifier EntryClassifier
	maxDepth   int
	retry      filesystem.RetryConfig
	observer   Observer
	progress   *ScanProgress
	publish    func(ScanProgress)
	log        logging.Logger
	now        func() time.Time
}

// crawlRoot walks the tree below root, which is depth 1. The stack holds
// frames whose parent has been fully classified; children are pushed in
// reverse so siblings are visited in listing order and each child's subtree
// finishes before the next sibling starts. Only ctx errors are returned.
func (c *crawler) crawlRoot(ctx context.Context, root string) error {
	stack := []frame{{path: root, depth: 1}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := c.crawlDir(ctx, f)
		if err != nil {
			return err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return nil
}

// crawlDir classifies the entries of one directory, ingests interesting
// files and returns the subdirectories that should be crawled next.
func (c *crawler) crawlDir(ctx context.Context, f frame) ([]frame, error) {
	start := time.Now()
	defer func() {
		metrics.ScanDirectoryDuration.Observe(time.Since(start).Seconds())
	}()

	entries, err := filesystem.ReadDirWithRetry(f.path, c.retry)
	if err != nil {
		c.recordError(&ScanError{Kind: ErrorKindAccess, Path: f.path, Err: err})
		return nil, nil
	}

	var own directoryStats
	var subdirs []string

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		fullPath := filepath.Join(f.path, name)
		c.visit(fullPath)

		var info fs.FileInfo
		if !IsHidden(name) {
			info, err = filesystem.LstatWithRetry(fullPath, c.retry)
			if err != nil {
				c.recordError(&ScanError{Kind: ErrorKindStat, Path: fullPath, Err: err})
				continue
			}
		}

		class := c.classifier.Classify(name, info)
		metrics.ScanEntriesClassified.WithLabelValues(class.String()).Inc()
		own.add(class)

		switch class {
		case ClassDirectory:
			subdirs = append(subdirs, fullPath)
		case ClassInteresting:
			c.log.Debug("Found media file: %s", fullPath)
			if err := c.ingest(ctx, fullPath, info); err != nil {
				return nil, err
			}
		case ClassSymlink:
			c.log.Debug("Skipping symbolic link: %s", fullPath)
		case ClassUnusual:
			c.log.Warn("Unknown file type %v: %s", info.Mode().Type(), fullPath)
		}
	}

	if len(subdirs) == 0 {
		return nil, nil
	}

	if f.parentStats.tooBoring() && own.tooBoring() {
		c.log.Debug("Pruning %d subdirectories of %s (interesting=%d, boring=%d)",
			len(subdirs), f.path, own.interesting, own.boring)
		metrics.ScanDirectoriesPruned.Add(float64(len(subdirs)))
		return nil, nil
	}

	if f.depth+1 > c.maxDepth {
		for _, dir := range subdirs {
			c.log.Debug("Max depth reached at: %s", dir)
		}
		metrics.ScanDirectoriesDepthLimited.Add(float64(len(subdirs)))
		return nil, nil
	}

	next := make([]frame, 0, len(subdirs))
	for _, dir := range subdirs {
		next = append(next, frame{path: dir, depth: f.depth + 1, parentStats: own})
	}
	return next, nil
}

// visit counts one listed entry and emits a progress event every
// progressInterval entries.
func (c *crawler) visit(path string) {
	c.progress.ProcessedFiles++
	c.progress.CurrentFile = path
	metrics.ScanEntriesProcessed.Inc()

	if c.progress.ProcessedFiles%progressInterval == 0 {
		snap := c.progress.snapshot()
		c.publish(snap)
		c.observer.OnProgress(snap)
	}
}

// ingest writes one interesting file to the catalog. Failures other than
// cancellation are recorded and swallowed.
func (c *crawler) ingest(ctx context.Context, path string, info fs.FileInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := filesystem.RealpathWithRetry(path, c.retry)
	if err != nil {
		c.recordError(&ScanError{Kind: ErrorKindIngest, Path: path, Err: err})
		return nil
	}

	item := &database.LibraryItem{
		Path:       canonical,
		Basename:   filepath.Base(path),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
		AddedAt:    c.now(),
		Status:     database.StatusPending,
	}

	inserted, err := c.store.UpsertIfAbsent(ctx, item)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		c.recordError(&ScanError{Kind: ErrorKindIngest, Path: path, Err: err})
		return nil
	}
	if !inserted {
		c.log.Debug("File already in library: %s", canonical)
		metrics.ScanFilesAlreadyKnown.Inc()
		return nil
	}

	c.progress.FoundFiles++
	c.progress.TotalFiles++
	metrics.ScanFilesIngested.Inc()
	c.log.Debug("Added file to library: %s", item.Basename)

	c.observer.OnFileAdded(FileAdded{Path: canonical, Basename: item.Basename})
	return nil
}

// recordError appends a non-fatal failure to the run's error list. The
// failure becomes visible at the next progress tick or root boundary.
func (c *crawler) recordError(err *ScanError) {
	c.log.Warn("%v", err)
	metrics.ScanErrors.WithLabelValues(string(err.Kind)).Inc()
	c.progress.Errors = append(c.progress.Errors, err.Error())
}
