package database

import (
	"context"
	"fmt"
	"time"
)

// UpdateScanState records the outcome of the latest scan of a library root,
// replacing any previous record for it.
func (d *Database) UpdateScanState(ctx context.Context, state ScanState) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_scan_state", start, err) }()

	if state.LastScan.IsZero() {
		state.LastScan = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO scan_state (root, last_scan, files_found, error_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(root) DO UPDATE SET
			last_scan = excluded.last_scan,
			files_found = excluded.files_found,
			error_count = excluded.error_count
	`, state.Root, state.LastScan.Unix(), state.FilesFound, state.ErrorCount)
	if err != nil {
		err = fmt.Errorf("update scan state for %s: %w", state.Root, err)
	}
	return err
}

// ScanStates returns the recorded scan state of every root, ordered by root.
func (d *Database) ScanStates(ctx context.Context) ([]ScanState, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("scan_states", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT root, last_scan, files_found, error_count
		FROM scan_state ORDER BY root
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []ScanState
	for rows.Next() {
		var s ScanState
		var lastScan int64
		if err = rows.Scan(&s.Root, &lastScan, &s.FilesFound, &s.ErrorCount); err != nil {
			return nil, err
		}
		s.LastScan = time.Unix(lastScan, 0)
		states = append(states, s)
	}
	err = rows.Err()
	return states, err
}
