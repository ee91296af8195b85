package verifycmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/klabast/wb-services/kalender-parser/internal/config"
	"github.com/klabast/wb-services/kalender-parser/internal/dataset"
	"github.com/klabast/wb-services/kalender-parser/internal/ocr"
	"github.com/klabast/wb-services/kalender-parser/internal/parser"
	"github.com/klabast/wb-services/kalender-parser/internal/render"
	"github.com/klabast/wb-services/kalender-parser/internal/verify"
)

type runOptions struct {
	pdfPath       string
	referencePath string
	configPath    string
	outputPath    string
	year          int
	dpi           int
	limit         int
	concurrency   int
}

func executeRun(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("loading reference dataset", "path", opts.referencePath)
	loader := dataset.NewLoader(opts.referencePath)
	var records []dataset.ReferenceRecord
	if opts.limit > 0 {
		records, err = loader.LoadSample(opts.limit)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load reference dataset: %w", err)
	}
	reference := dataset.GroupByDistrict(records)
	slog.Info("reference dataset loaded", "records", len(records), "districts", len(reference))

	renderer, err := render.NewService()
	if err != nil {
		return fmt.Errorf("failed to set up renderer: %w", err)
	}
	defer renderer.Cleanup()

	svc := parser.NewService(cfg, renderer, ocr.NewService())

	dpi := opts.dpi
	if dpi <= 0 {
		dpi = cfg.Detection.DPI
	}

	start := time.Now()
	doc, err := svc.ParseDocument(ctx, opts.pdfPath, parser.Options{
		Year:        opts.year,
		DPI:         dpi,
		Concurrency: opts.concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to parse calendar: %w", err)
	}
	parseDuration := time.Since(start)

	slog.Info("comparing against reference", "parsed_districts", len(doc.Districts))
	districts := verify.CompareDocument(doc, reference)
	summary := verify.Aggregate(districts, parseDuration)

	result := &verify.RunResult{
		Config: verify.RunConfig{
			PDFPath:       opts.pdfPath,
			ReferencePath: opts.referencePath,
			Year:          doc.Year,
			DPI:           dpi,
			Concurrency:   opts.concurrency,
			Timestamp:     time.Now().Format(time.RFC3339),
		},
		Summary:   summary,
		Districts: districts,
	}

	savedPath, err := result.Save(opts.outputPath)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	summary.PrintSummary()

	fmt.Printf("\nGenerate detailed report with:\n")
	fmt.Printf("  kalender-parser verify report --results %s\n", savedPath)

	return nil
}
