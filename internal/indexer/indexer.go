package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"medialist/internal/database"
	"medialist/internal/filesystem"
	"medialist/internal/logging"
	"medialist/internal/metrics"
)

var errNotDirectory = errors.New("not a directory")

// CatalogStore is the part of the catalog the scanner writes to.
type CatalogStore interface {
	UpsertIfAbsent(ctx context.Context, item *database.LibraryItem) (bool, error)
}

// ScanStateRecorder is optionally implemented by a CatalogStore that keeps
// per-root scan history.
type ScanStateRecorder interface {
	UpdateScanState(ctx context.Context, state database.ScanState) error
}

// Locker guards a catalog against scans from other processes.
type Locker interface {
	TryLock() error
	Unlock() error
}

// Indexer orchestrates library scans: it owns the progress record of the
// current run, serializes runs, and schedules periodic rescans.
type Indexer struct {
	store        CatalogStore
	config       Config
	classifier   EntryClassifier
	retry        filesystem.RetryConfig
	observer     Observer
	locker       Locker
	scanInterval time.Duration
	log          logging.Logger
	now          func() time.Time

	// ctx is cancelled by Stop and bounds background scans.
	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	wg       sync.WaitGroup

	scanMu              sync.Mutex
	isScanning          bool
	lastScanTime        time.Time
	lastScanErr         error
	initialScanComplete bool
	startTime           time.Time

	progress atomic.Value
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready         bool          `json:"ready"`
	Scanning      bool          `json:"scanning"`
	StartTime     time.Time     `json:"startTime"`
	Uptime        string        `json:"uptime"`
	LastScan      time.Time     `json:"lastScan,omitzero"`
	LastScanError string        `json:"lastScanError,omitempty"`
	Progress      *ScanProgress `json:"progress,omitempty"`
}

// New creates an Indexer that writes to store using config. An empty
// VideoFileExtensions list makes no file interesting.
func New(store CatalogStore, config Config) *Indexer {
	if config.MaxSearchDepth < 1 {
		config.MaxSearchDepth = DefaultMaxSearchDepth
	}

	ctx, cancel := context.WithCancel(context.Background())
	idx := &Indexer{
		store:      store,
		config:     config,
		classifier: NewEntryClassifier(config.VideoFileExtensions, config.MinMovieSize),
		retry:      filesystem.DefaultRetryConfig(),
		observer:   NopObserver{},
		log:        logging.For("indexer"),
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}
	idx.progress.Store(ScanProgress{Errors: []string{}})
	return idx
}

// SetObserver sets the receiver of scan events. A nil observer disables events.
func (idx *Indexer) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	idx.observer = o
}

// SetLocker sets a cross-process lock taken for the duration of every scan.
func (idx *Indexer) SetLocker(l Locker) {
	idx.locker = l
}

// SetScanInterval sets the interval between periodic rescans. Zero disables them.
func (idx *Indexer) SetScanInterval(interval time.Duration) {
	idx.scanInterval = interval
}

// SetRetryConfig overrides the filesystem retry behavior.
func (idx *Indexer) SetRetryConfig(config filesystem.RetryConfig) {
	idx.retry = config
}

// Config returns the scanner configuration.
func (idx *Indexer) Config() Config {
	return idx.config
}

// Start launches the optional initial scan and the periodic rescan loop.
func (idx *Indexer) Start(scanOnStart bool) {
	if scanOnStart {
		idx.wg.Add(1)
		go func() {
			defer idx.wg.Done()
			logging.Info("Starting initial library scan in background...")
			if _, err := idx.Scan(idx.ctx); err != nil {
				logging.Error("Initial scan error: %v", err)
			}
		}()
	} else {
		idx.scanMu.Lock()
		idx.initialScanComplete = true
		idx.scanMu.Unlock()
	}

	if idx.scanInterval > 0 {
		idx.wg.Add(1)
		go func() {
			defer idx.wg.Done()
			idx.periodicScan()
		}()
	}
}

// Stop cancels any running scan and waits for background scans to return.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(idx.cancel)
	idx.wg.Wait()
}

// Scan scans the configured library roots.
func (idx *Indexer) Scan(ctx context.Context) (ScanProgress, error) {
	return idx.ScanAll(ctx, idx.config.LibraryRoots)
}

// ScanAll scans roots in order and returns the final progress snapshot.
// Per-root and per-entry failures are recorded in the snapshot's Errors and
// never abort the run. A second call while a scan is running fails with
// ErrScanInProgress. If ctx is cancelled the scan stops early, the complete
// event is still emitted, and the partial snapshot is returned with ctx.Err().
func (idx *Indexer) ScanAll(ctx context.Context, roots []string) (ScanProgress, error) {
	if !idx.tryStartScanning() {
		metrics.ScanRunsTotal.WithLabelValues("rejected").Inc()
		return ScanProgress{}, ErrScanInProgress
	}
	defer idx.finishScanning()

	return idx.runScan(ctx, roots)
}

// TriggerScan starts a scan of the configured roots in the background. It
// returns ErrScanInProgress, or the locker's error, without starting anything
// if a scan is already running here or in another process.
func (idx *Indexer) TriggerScan() error {
	if !idx.tryStartScanning() {
		metrics.ScanRunsTotal.WithLabelValues("rejected").Inc()
		return ErrScanInProgress
	}

	release, err := idx.acquireLock()
	if err != nil {
		idx.finishScanning()
		return err
	}

	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		defer idx.finishScanning()
		defer release()
		if _, err := idx.crawlRoots(idx.ctx, idx.config.LibraryRoots); err != nil {
			logging.Error("manually triggered scan failed: %v", err)
		}
	}()
	return nil
}

func (idx *Indexer) runScan(ctx context.Context, roots []string) (ScanProgress, error) {
	release, err := idx.acquireLock()
	if err != nil {
		return ScanProgress{}, err
	}
	defer release()
	return idx.crawlRoots(ctx, roots)
}

// acquireLock takes the cross-process lock, if any, and returns its release.
func (idx *Indexer) acquireLock() (func(), error) {
	if idx.locker == nil {
		return func() {}, nil
	}
	if err := idx.locker.TryLock(); err != nil {
		metrics.ScanRunsTotal.WithLabelValues("rejected").Inc()
		idx.setLastScanErr(err)
		return nil, err
	}
	return func() {
		if err := idx.locker.Unlock(); err != nil {
			idx.log.Warn("Failed to release scan lock: %v", err)
		}
	}, nil
}

func (idx *Indexer) setLastScanErr(err error) {
	idx.scanMu.Lock()
	idx.lastScanErr = err
	idx.scanMu.Unlock()
}

// crawlRoots runs one scan over roots with a fresh progress record.
func (idx *Indexer) crawlRoots(ctx context.Context, roots []string) (ScanProgress, error) {
	var err error
	defer func() { idx.setLastScanErr(err) }()

	metrics.ScanRunning.Set(1)
	defer metrics.ScanRunning.Set(0)

	startTime := time.Now()
	idx.log.Info("Starting library scan of %d root(s)", len(roots))

	c := &crawler{
		store:      idx.store,
		classifier: idx.classifier,
		maxDepth:   idx.config.MaxSearchDepth,
		retry:      idx.retry,
		observer:   idx.observer,
		progress:   newScanProgress(),
		publish:    func(p ScanProgress) { idx.progress.Store(p) },
		log:        idx.log,
		now:        idx.now,
	}
	c.publish(c.progress.snapshot())

	for _, root := range roots {
		if err = ctx.Err(); err != nil {
			break
		}

		errorsBefore := len(c.progress.Errors)
		foundBefore := c.progress.FoundFiles

		if rootErr := idx.checkRoot(root); rootErr != nil {
			c.recordError(&ScanError{Kind: ErrorKindAccess, Path: root, Root: true, Err: rootErr})
		} else if err = c.crawlRoot(ctx, root); err != nil {
			break
		}

		idx.recordScanState(ctx, database.ScanState{
			Root:       root,
			LastScan:   idx.now(),
			FilesFound: int(c.progress.FoundFiles - foundBefore),
			ErrorCount: len(c.progress.Errors) - errorsBefore,
		})
		c.publish(c.progress.snapshot())
	}

	final := c.progress.snapshot()
	idx.progress.Store(final)
	idx.observer.OnComplete(final)

	duration := time.Since(startTime)
	outcome := "completed"
	if err != nil {
		outcome = "cancelled"
		idx.log.Warn("Library scan cancelled after %v: %v", duration, err)
	}
	metrics.ScanRunsTotal.WithLabelValues(outcome).Inc()
	metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScanLastRunDuration.Set(duration.Seconds())

	idx.scanMu.Lock()
	idx.lastScanTime = time.Now()
	idx.scanMu.Unlock()

	idx.log.Info("Scan complete: %d entries processed, %d files added, %d errors in %v",
		final.ProcessedFiles, final.FoundFiles, len(final.Errors), duration)

	return final, err
}

// checkRoot verifies that root exists and is a directory.
func (idx *Indexer) checkRoot(root string) error {
	info, err := filesystem.StatWithRetry(root, idx.retry)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errNotDirectory
	}
	return nil
}

func (idx *Indexer) recordScanState(ctx context.Context, state database.ScanState) {
	recorder, ok := idx.store.(ScanStateRecorder)
	if !ok {
		return
	}
	if err := recorder.UpdateScanState(ctx, state); err != nil && !errors.Is(err, context.Canceled) {
		idx.log.Warn("Failed to record scan state for %s: %v", state.Root, err)
	}
}

// tryStartScanning attempts to start a scan, returns false if already in progress.
func (idx *Indexer) tryStartScanning() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	if idx.isScanning {
		return false
	}
	idx.isScanning = true
	return true
}

// finishScanning marks the scan as complete.
func (idx *Indexer) finishScanning() {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	idx.isScanning = false
	idx.initialScanComplete = true
}

func (idx *Indexer) periodicScan() {
	ticker := time.NewTicker(idx.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic rescan triggered")
			if _, err := idx.Scan(idx.ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
				logging.Error("periodic rescan failed: %v", err)
			}
		case <-idx.ctx.Done():
			return
		}
	}
}

// IsScanning returns whether a scan is currently in progress.
func (idx *Indexer) IsScanning() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.isScanning
}

// LastScanTime returns the time the last scan finished.
func (idx *Indexer) LastScanTime() time.Time {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.lastScanTime
}

// Progress returns a snapshot of the running scan, or of the last one.
func (idx *Indexer) Progress() ScanProgress {
	if p, ok := idx.progress.Load().(ScanProgress); ok {
		return p
	}
	return ScanProgress{Errors: []string{}}
}

// IsReady returns true once the initial scan has finished, or immediately
// when no initial scan was requested.
func (idx *Indexer) IsReady() bool {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()
	return idx.initialScanComplete
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.scanMu.Lock()
	defer idx.scanMu.Unlock()

	status := HealthStatus{
		Ready:     idx.initialScanComplete,
		Scanning:  idx.isScanning,
		StartTime: idx.startTime,
		Uptime:    time.Since(idx.startTime).String(),
		LastScan:  idx.lastScanTime,
	}

	if idx.isScanning {
		progress := idx.Progress()
		status.Progress = &progress
	}

	if idx.lastScanErr != nil {
		status.LastScanError = idx.lastScanErr.Error()
	}

	return status
}
