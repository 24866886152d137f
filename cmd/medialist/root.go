package main

import (
	"os"

	"medialist/internal/logging"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dbDirFlag string
	var verbose bool

	ctx := newCommandContext(&dbDirFlag)

	rootCmd := &cobra.Command{
		Use:           "medialist",
		Short:         "Scan and browse a local movie catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case verbose:
				logging.SetLevel(logging.LevelDebug)
			case os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "":
				logging.SetLevel(logging.LevelWarn)
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbDirFlag, "db-dir", "", "Catalog directory (overrides DATABASE_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newRebuildCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return true
	}
	return false
}
