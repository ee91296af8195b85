package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
	"github.com/klabast/wb-services/kalender-parser/internal/config"
	"github.com/klabast/wb-services/kalender-parser/internal/ocr"
	"github.com/klabast/wb-services/kalender-parser/internal/parser"
	"github.com/klabast/wb-services/kalender-parser/internal/render"
	"github.com/klabast/wb-services/kalender-parser/internal/storage"
)

func newParseCmd() *cobra.Command {
	var configPath string
	var outputPath string
	var year int
	var dpi int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "parse <pdf>",
		Short: "Parse a calendar PDF into a year document",
		Long: `Parse the scanned Abfall-Kalender PDF into structured collection events.

Each page is rendered, the calendar grid is detected and the colored
waste-type pictograms are mapped to collection dates. Pages whose
district stands for several localities are expanded into one entry per
locality. The result is a single JSON document for the year.`,
		Example: `  # Parse into the default data/<year>.json
  kalender-parser parse abfall-kalender-2026.pdf

  # Parse four pages at a time into a custom location
  kalender-parser parse kalender.pdf --year 2027 --concurrency 4 --output /tmp/2027.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]
			if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
				return fmt.Errorf("PDF file not found: %s", pdfPath)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			renderer, err := render.NewService()
			if err != nil {
				return fmt.Errorf("failed to set up renderer: %w", err)
			}
			defer renderer.Cleanup()

			svc := parser.NewService(cfg, renderer, ocr.NewService())
			doc, err := svc.ParseDocument(cmd.Context(), pdfPath, parser.Options{
				Year:        year,
				DPI:         dpi,
				Concurrency: concurrency,
			})
			if err != nil {
				return fmt.Errorf("failed to parse calendar: %w", err)
			}

			if outputPath == "" {
				outputPath = filepath.Join("data", fmt.Sprintf("%d.json", doc.Year))
			}

			store := storage.New()
			store.Set(doc)
			if err := store.Save(doc.Year, outputPath); err != nil {
				return fmt.Errorf("failed to save document: %w", err)
			}

			printParseSummary(doc)

			absPath, _ := filepath.Abs(outputPath)
			fmt.Printf("\n✅ Calendar document saved to: %s\n", absPath)
			fmt.Printf("\nExport the events with:\n")
			fmt.Printf("  kalender-parser export --input %s --format ics\n", outputPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML config overriding detection defaults")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON path (default: data/<year>.json)")
	cmd.Flags().IntVar(&year, "year", 0, "Calendar year (default: built-in default year)")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "Render resolution (default: config calibration DPI)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Parallel page workers")

	return cmd
}

func printParseSummary(doc *calendar.Document) {
	names := make([]string, 0, len(doc.Districts))
	total := 0
	for name, district := range doc.Districts {
		names = append(names, name)
		total += len(district.Events)
	}
	sort.Strings(names)

	fmt.Println("\n========================================")
	fmt.Println("Parse Summary")
	fmt.Println("========================================")
	fmt.Printf("Year:           %d\n", doc.Year)
	fmt.Printf("Districts:      %d\n", len(doc.Districts))
	fmt.Printf("Total Events:   %d\n", total)
	fmt.Println()
	fmt.Println("Events per District:")
	for _, name := range names {
		fmt.Printf("  %-22s %d\n", name+":", len(doc.Districts[name].Events))
	}
	fmt.Println("========================================")
}
