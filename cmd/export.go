package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/kalender-parser/internal/export"
	"github.com/klabast/wb-services/kalender-parser/internal/storage"
)

func newExportCmd() *cobra.Command {
	var inputPath string
	var outputDir string
	var district string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a parsed calendar as ICS, CSV, parquet or jsonl",
		Long: `Export collection events from a parsed year document.

ICS and CSV produce one file per district, ready for calendar
subscriptions and spreadsheets. Parquet and jsonl flatten all events
into a single file for analytical use and as verification reference
data.`,
		Example: `  # Calendar files for every district
  kalender-parser export --input data/2026.json --format ics

  # One district as CSV
  kalender-parser export --input data/2026.json --format csv --district Silbach

  # Flat reference dataset
  kalender-parser export --input data/2026.json --format jsonl --output reference/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("document file not found: %s", inputPath)
			}

			exportFormat, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			doc, err := storage.New().Load(inputPath)
			if err != nil {
				return fmt.Errorf("failed to load document: %w", err)
			}

			files, err := export.NewExporter(outputDir).ExportDocument(doc, district, exportFormat)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}

			absDir, _ := filepath.Abs(outputDir)
			fmt.Printf("\n✅ Exported %d file(s) to: %s\n", len(files), absDir)
			for _, file := range files {
				fmt.Printf("  %s\n", filepath.Base(file))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Parsed year document JSON (required)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "exports", "Output directory")
	cmd.Flags().StringVar(&district, "district", "", "Export only this district")
	cmd.Flags().StringVar(&format, "format", "ics", "Output format (ics, csv, parquet or jsonl)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
