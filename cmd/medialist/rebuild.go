package main

import (
	"fmt"

	"medialist/internal/database"
	"medialist/internal/scanlock"
	"medialist/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRebuildCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Drop every catalog entry and recreate an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("rebuild deletes the whole catalog; pass --yes to confirm")
			}
			return ctx.withDatabase(cmd.Context(), func(_ *startup.Config, db *database.Database) error {
				lock := scanlock.ForDatabase(db.Path())
				if err := lock.TryLock(); err != nil {
					return err
				}
				defer lock.Unlock()

				before, err := db.Count(cmd.Context())
				if err != nil {
					return err
				}
				if err := db.DropAll(cmd.Context()); err != nil {
					return err
				}
				if err := db.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Catalog rebuilt, removed %s entries\n", humanize.Comma(int64(before)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting the catalog")

	return cmd
}
