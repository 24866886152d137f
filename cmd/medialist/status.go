package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"medialist/internal/database"
	"medialist/internal/scanlock"
	"medialist/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals and per-root scan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd.Context(), func(cfg *startup.Config, db *database.Database) error {
				byStatus, err := db.CountByStatus(cmd.Context())
				if err != nil {
					return err
				}
				states, err := db.ScanStates(cmd.Context())
				if err != nil {
					return err
				}
				scanning, err := scanInProgress(db.Path())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), cfg, byStatus, states, scanning)
				return nil
			})
		},
	}
}

// scanInProgress probes the scan lock without keeping it.
func scanInProgress(dbPath string) (bool, error) {
	lock := scanlock.ForDatabase(dbPath)
	err := lock.TryLock()
	if errors.Is(err, scanlock.ErrScanLocked) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, lock.Unlock()
}

func printStatus(out io.Writer, cfg *startup.Config, byStatus map[string]int, states []database.ScanState, scanning bool) {
	total := 0
	statuses := make([]string, 0, len(byStatus))
	for status, n := range byStatus {
		total += n
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	fmt.Fprintf(out, "Catalog:  %s\n", cfg.DatabasePath)
	fmt.Fprintf(out, "Entries:  %s\n", humanize.Comma(int64(total)))
	for _, status := range statuses {
		fmt.Fprintf(out, "  %-8s %s\n", status+":", humanize.Comma(int64(byStatus[status])))
	}
	if scanning {
		fmt.Fprintln(out, "Scan:     running in another process")
	} else {
		fmt.Fprintln(out, "Scan:     idle")
	}

	if len(states) == 0 {
		fmt.Fprintln(out, "No roots scanned yet")
		return
	}
	rows := make([][]string, 0, len(states))
	for _, s := range states {
		rows = append(rows, []string{
			s.Root,
			humanize.Time(s.LastScan),
			strconv.Itoa(s.FilesFound),
			strconv.Itoa(s.ErrorCount),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Root", "Last Scan", "Found", "Errors"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
}
