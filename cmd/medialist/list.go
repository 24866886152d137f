package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"medialist/internal/database"
	"medialist/internal/mediatypes"
	"medialist/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type listOptions struct {
	sort     string
	order    string
	status   string
	search   string
	page     int
	pageSize int
	json     bool
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDatabase(cmd.Context(), func(_ *startup.Config, db *database.Database) error {
				result, err := db.ListItems(cmd.Context(), database.ListOptions{
					SortField: mediatypes.ParseSortField(opts.sort),
					SortOrder: mediatypes.ParseSortOrder(opts.order),
					Status:    opts.status,
					Search:    opts.search,
					Page:      opts.page,
					PageSize:  opts.pageSize,
				})
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				printItems(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", "path", "Sort by path, basename, size, modified or added")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "Sort order (asc or desc)")
	cmd.Flags().StringVar(&opts.status, "status", "", "Only show entries with this status")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Only show entries whose file name contains this text")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 100, "Entries per page")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the page as JSON")

	return cmd
}

func printItems(out io.Writer, result *database.ListResult) {
	if result.TotalItems == 0 {
		fmt.Fprintln(out, "No catalog entries")
		return
	}

	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			humanize.IBytes(uint64(item.Size)),
			item.ModifiedAt.Format("2006-01-02"),
			item.Status,
			item.Path,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Size", "Modified", "Status", "Path"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Page %d of %d (%s entries)\n",
		result.Page, result.TotalPages, humanize.Comma(int64(result.TotalItems)))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
