package verifycmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/klabast/wb-services/kalender-parser/internal/config"
	"github.com/klabast/wb-services/kalender-parser/internal/grid"
	"github.com/klabast/wb-services/kalender-parser/internal/locality"
	"github.com/klabast/wb-services/kalender-parser/internal/pictogram"
	"github.com/klabast/wb-services/kalender-parser/internal/render"
)

type inspectOptions struct {
	pdfPath    string
	configPath string
	dumpDir    string
	page       int
	dpi        int
}

func executeInspect(ctx context.Context, opts inspectOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	renderer, err := render.NewService()
	if err != nil {
		return fmt.Errorf("failed to set up renderer: %w", err)
	}
	defer renderer.Cleanup()

	pageCount, err := renderer.PageCount(ctx, opts.pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.pdfPath, err)
	}
	if opts.page < 0 || opts.page >= pageCount {
		return fmt.Errorf("page %d out of range, document has %d pages", opts.page, pageCount)
	}

	dpi := opts.dpi
	if dpi <= 0 {
		dpi = cfg.Detection.DPI
	}

	text, err := renderer.ExtractText(ctx, opts.pdfPath, opts.page)
	if err != nil {
		slog.Warn("text extraction failed", "page", opts.page, "err", err)
		text = ""
	}
	resolver := locality.NewResolver(cfg.Expansion)
	district := resolver.Resolve(text, opts.page)

	pngPath, err := renderer.RenderPage(ctx, opts.pdfPath, opts.page, dpi)
	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", opts.page, err)
	}
	img, err := renderer.LoadImage(pngPath)
	if err != nil {
		return fmt.Errorf("failed to load page image: %w", err)
	}
	defer img.Close()

	det := cfg.Detection.ScaledFor(dpi)
	boundaries := grid.NewDetector(det).Detect(img)
	valid := boundaries.Valid(det.MinRowBoundaries, det.MinColBoundaries)

	fmt.Println("========================================")
	fmt.Println("Page Inspection")
	fmt.Println("========================================")
	fmt.Printf("Page:       %d of %d\n", opts.page, pageCount)
	fmt.Printf("Renderer:   %s\n", renderer.Provider())
	fmt.Printf("Size:       %dx%d px at %d DPI\n", img.Cols(), img.Rows(), dpi)
	fmt.Printf("District:   %s\n", district)
	if resolver.Expands(district) {
		fmt.Printf("Expands to: %s\n", strings.Join(resolver.Targets(district), ", "))
	}
	fmt.Printf("Rows:       %d boundaries\n", len(boundaries.Horizontal))
	fmt.Printf("Columns:    %d boundaries\n", len(boundaries.Vertical))
	fmt.Printf("Calendar:   %v\n", valid)

	if opts.dumpDir != "" {
		if err := os.MkdirAll(opts.dumpDir, 0755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
		dumpImage(filepath.Join(opts.dumpDir, fmt.Sprintf("page-%d.png", opts.page)), img)
	}

	if !valid {
		fmt.Println("\nNo calendar grid on this page.")
		return nil
	}

	locator := pictogram.NewLocator(det)
	for _, sig := range cfg.Signatures {
		points := locator.Locate(img, sig)

		cells := make([]grid.Cell, 0, len(points))
		outside := 0
		for _, pt := range points {
			cell, err := boundaries.Cell(pt.X, pt.Y)
			if err != nil || !cell.InCalendar() {
				outside++
				continue
			}
			cells = append(cells, cell)
		}
		sort.Slice(cells, func(i, j int) bool {
			if cells[i].Month != cells[j].Month {
				return cells[i].Month < cells[j].Month
			}
			return cells[i].Day < cells[j].Day
		})

		fmt.Printf("\n%s: %d pictograms, %d in calendar cells", sig.Type, len(points), len(cells))
		if outside > 0 {
			fmt.Printf(" (%d outside)", outside)
		}
		fmt.Println()
		if len(cells) > 0 {
			parts := make([]string, len(cells))
			for i, cell := range cells {
				parts[i] = cell.String()
			}
			fmt.Printf("  %s\n", strings.Join(parts, " "))
		}

		if opts.dumpDir != "" {
			mask := locator.Mask(img, sig)
			dumpImage(filepath.Join(opts.dumpDir, fmt.Sprintf("page-%d-%s-mask.png", opts.page, sig.Type)), mask)
			mask.Close()
		}
	}

	return nil
}

func dumpImage(path string, img gocv.Mat) {
	if ok := gocv.IMWrite(path, img); !ok {
		slog.Warn("failed to write debug image", "path", path)
		return
	}
	fmt.Printf("Wrote %s\n", path)
}
