package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "kalender-parser",
		Short: "Waste collection calendar parser for the Winterberg districts",
		Long: `Kalender-parser turns the scanned Abfall-Kalender PDF into structured
collection events.

Each page is rendered and analyzed: the calendar grid is located via
line detection, the colored waste-type pictograms are matched by their
print colors, and every hit becomes a dated collection event for the
page's district. Further commands download the source PDF, export the
events as ICS, CSV, parquet or jsonl, and verify a parse against
reference data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}
