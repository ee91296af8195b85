package verifycmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for verifying a parse against a
// reference dataset.
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Parse a calendar PDF and compare it against reference data",
		Long: `Parse a calendar PDF and score the result against a ground-truth file.

The reference file holds expected collection events as flat rows
(district, date, type, description) in parquet or jsonl format. Every
reference district is matched against the parsed districts by name and
its event dates are scored per waste type.`,
		Example: `  # Verify a full calendar against a jsonl reference
  kalender-parser verify run --pdf abfall-kalender-2026.pdf --reference expected.jsonl

  # Quick check against the first 200 reference rows, four pages at a time
  kalender-parser verify run --pdf kalender.pdf --reference expected.parquet --limit 200 --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.pdfPath); os.IsNotExist(err) {
				return fmt.Errorf("PDF file not found: %s", opts.pdfPath)
			}
			if _, err := os.Stat(opts.referencePath); os.IsNotExist(err) {
				return fmt.Errorf("reference file not found: %s", opts.referencePath)
			}
			return executeRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "Path to the calendar PDF (required)")
	cmd.Flags().StringVar(&opts.referencePath, "reference", "", "Path to the parquet or jsonl reference file (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Optional YAML config overriding detection defaults")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Results YAML path (default: verifications/verify-<timestamp>.yaml)")
	cmd.Flags().IntVar(&opts.year, "year", 0, "Calendar year (default: built-in default year)")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 0, "Render resolution (default: config calibration DPI)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Max reference rows to load (0 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "Parallel page workers while parsing")

	_ = cmd.MarkFlagRequired("pdf")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

// NewReportCmd creates the report command for rendering saved results.
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved verification result",
		Long: `Render a results YAML produced by verify run.

The text format prints the run summary followed by per-district name
matches, per-type scores and plausibility warnings.`,
		Example: `  # Human-readable report
  kalender-parser verify report --results verifications/verify-2026-01-15_09-30-00.yaml

  # Re-emit the raw YAML
  kalender-parser verify report --results results.yaml --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resultsPath == "" {
				return fmt.Errorf("--results is required")
			}
			return executeReport(resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a verify run results YAML (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or yaml)")

	_ = cmd.MarkFlagRequired("results")

	return cmd
}

// NewInspectCmd creates the inspect command for examining a single
// page's detection behavior.
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect grid and pictogram detection on a single page",
		Long: `Inspect one page of a calendar PDF.

Prints the resolved district name, the detected row and column
boundaries, and the calendar cells each color signature hits. Useful
for tuning detection thresholds against a new print layout.`,
		Example: `  # Inspect the third page
  kalender-parser verify inspect --pdf kalender.pdf --page 2

  # Dump the rendered page and per-type masks for visual inspection
  kalender-parser verify inspect --pdf kalender.pdf --page 2 --dump debug/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.pdfPath); os.IsNotExist(err) {
				return fmt.Errorf("PDF file not found: %s", opts.pdfPath)
			}
			return executeInspect(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "Path to the calendar PDF (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Optional YAML config overriding detection defaults")
	cmd.Flags().StringVar(&opts.dumpDir, "dump", "", "Directory for rendered page and mask PNGs")
	cmd.Flags().IntVar(&opts.page, "page", 0, "Page index to inspect, starting at 0")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 0, "Render resolution (default: config calibration DPI)")

	_ = cmd.MarkFlagRequired("pdf")

	return cmd
}
