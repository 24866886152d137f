package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"medialist/internal/database"
	"medialist/internal/indexer"
	"medialist/internal/scanlock"
	"medialist/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type scanOptions struct {
	extensions []string
	minSize    int64
	depth      int
	showAdded  bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [root...]",
		Short: "Scan library roots and add new movies to the catalog",
		Long: "Scan walks each root (or LIBRARY_ROOTS when none are given) and records\n" +
			"every movie file not already in the catalog. Existing entries are never changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd.Context(), func(cfg *startup.Config, db *database.Database) error {
				scanCfg, err := opts.apply(cmd, cfg.ScanConfig(), args)
				if err != nil {
					return err
				}
				return runScan(cmd.Context(), cmd.OutOrStdout(), db, scanCfg, opts.showAdded)
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.extensions, "ext", nil, "Video file extensions (overrides VIDEO_FILE_EXTENSIONS)")
	cmd.Flags().Int64Var(&opts.minSize, "min-size", 0, "Minimum movie size in bytes (overrides MIN_MOVIE_SIZE)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "Maximum search depth, roots are depth 1 (overrides MAX_SEARCH_DEPTH)")
	cmd.Flags().BoolVar(&opts.showAdded, "show-added", false, "Print each newly added file")

	return cmd
}

func (o scanOptions) apply(cmd *cobra.Command, cfg indexer.Config, roots []string) (indexer.Config, error) {
	if len(roots) > 0 {
		cfg.LibraryRoots = make([]string, 0, len(roots))
		for _, root := range roots {
			abs, err := filepath.Abs(root)
			if err != nil {
				return cfg, fmt.Errorf("resolve root %q: %w", root, err)
			}
			cfg.LibraryRoots = append(cfg.LibraryRoots, abs)
		}
	}
	if cmd.Flags().Changed("ext") {
		cfg.VideoFileExtensions = o.extensions
	}
	if cmd.Flags().Changed("min-size") {
		if o.minSize < 0 {
			return cfg, fmt.Errorf("--min-size must not be negative")
		}
		cfg.MinMovieSize = o.minSize
	}
	if cmd.Flags().Changed("depth") {
		if o.depth < 1 {
			return cfg, fmt.Errorf("--depth must be at least 1")
		}
		cfg.MaxSearchDepth = o.depth
	}
	if len(cfg.LibraryRoots) == 0 {
		return cfg, fmt.Errorf("no library roots: pass them as arguments or set LIBRARY_ROOTS")
	}
	return cfg, nil
}

func runScan(ctx context.Context, out io.Writer, db *database.Database, cfg indexer.Config, showAdded bool) error {
	idx := indexer.New(db, cfg)
	defer idx.Stop()
	idx.SetLocker(scanlock.ForDatabase(db.Path()))

	events := indexer.NewEventChannel(ctx, 64)
	idx.SetObserver(events)

	var (
		result  indexer.ScanProgress
		scanErr error
	)
	started := time.Now()
	go func() {
		result, scanErr = idx.ScanAll(ctx, cfg.LibraryRoots)
		events.Close()
	}()

	line := newProgressLine(out)
	for ev := range events.Events() {
		switch ev.Kind {
		case indexer.EventProgress:
			line.update(ev.Progress)
		case indexer.EventFileAdded:
			if showAdded {
				line.clear()
				fmt.Fprintf(out, "+ %s\n", ev.File.Path)
			}
		case indexer.EventComplete:
			line.clear()
		}
	}

	if scanErr != nil && result.ProcessedFiles == 0 && len(result.Errors) == 0 {
		return scanErr
	}

	fmt.Fprintf(out, "Scanned %s entries in %s, added %s new movies\n",
		humanize.Comma(result.ProcessedFiles),
		time.Since(started).Round(time.Millisecond),
		humanize.Comma(result.FoundFiles))
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "%d errors:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
	}
	return scanErr
}

// progressLine redraws a single status line when out is a terminal and
// stays silent otherwise.
type progressLine struct {
	out   io.Writer
	width int
	shown bool
}

func newProgressLine(out io.Writer) *progressLine {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return &progressLine{}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return &progressLine{out: f, width: width}
}

func (l *progressLine) update(p indexer.ScanProgress) {
	if l.out == nil {
		return
	}
	msg := fmt.Sprintf("%s entries, %s found  %s",
		humanize.Comma(p.ProcessedFiles), humanize.Comma(p.FoundFiles), p.CurrentFile)
	fmt.Fprint(l.out, "\r"+fitWidth(msg, l.width-1))
	l.shown = true
}

func (l *progressLine) clear() {
	if l.out == nil || !l.shown {
		return
	}
	fmt.Fprint(l.out, "\r"+strings.Repeat(" ", l.width-1)+"\r")
	l.shown = false
}

// fitWidth pads or cuts s to exactly width runes, keeping the tail of long
// paths visible.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > width {
		if width <= 3 {
			return string(r[len(r)-width:])
		}
		return "..." + string(r[len(r)-width+3:])
	}
	return s + strings.Repeat(" ", width-len(r))
}
