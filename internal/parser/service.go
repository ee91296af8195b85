package parser

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gocv.io/x/gocv"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
	"github.com/klabast/wb-services/kalender-parser/internal/config"
	"github.com/klabast/wb-services/kalender-parser/internal/grid"
	"github.com/klabast/wb-services/kalender-parser/internal/locality"
	"github.com/klabast/wb-services/kalender-parser/internal/ocr"
	"github.com/klabast/wb-services/kalender-parser/internal/pictogram"
	"github.com/klabast/wb-services/kalender-parser/internal/render"
)

// DefaultYear is the calendar year assumed when none is given.
const DefaultYear = 2026

// minPageTextChars is the number of non-space characters below which
// the embedded page text is considered missing and OCR kicks in.
const minPageTextChars = 8

// headerBandRatio is the fraction of the page height OCR reads when
// recovering the title line from a scan.
const headerBandRatio = 0.2

// Service runs the page-to-events pipeline over whole calendar
// documents.
type Service struct {
	cfg      *config.Config
	renderer *render.Service
	ocr      *ocr.Service
	resolver *locality.Resolver
}

// NewService creates the pipeline service. The OCR service may be nil;
// scanned pages then fall through to synthetic district names.
func NewService(cfg *config.Config, renderer *render.Service, ocrService *ocr.Service) *Service {
	return &Service{
		cfg:      cfg,
		renderer: renderer,
		ocr:      ocrService,
		resolver: locality.NewResolver(cfg.Expansion),
	}
}

// Options tune one parsing run.
type Options struct {
	Year        int // calendar year, DefaultYear when zero
	DPI         int // render resolution, config calibration DPI when zero
	Concurrency int // parallel page workers, 1 = strictly sequential
}

// PageResult maps each configured waste type to its detected calendar
// cells, deduplicated and sorted by (month, day). A nil PageResult
// means the page has no calendar grid.
type PageResult map[string][]grid.Cell

// pageOutcome carries one page's contribution to the document. A nil
// events slice with skipped set means the page was not a calendar.
type pageOutcome struct {
	page     int
	district string
	events   []calendar.Event
	skipped  bool
	err      error
}

// ParseDocument renders and parses every page of the PDF and assembles
// the year document. Pages that are not calendars are skipped; a page
// that cannot be rendered at all fails the whole run.
func (s *Service) ParseDocument(ctx context.Context, pdfPath string, opts Options) (*calendar.Document, error) {
	year := opts.Year
	if year <= 0 {
		year = DefaultYear
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = s.cfg.Detection.DPI
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	pageCount, err := s.renderer.PageCount(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", pdfPath, err)
	}

	slog.Info("parsing calendar", "source", pdfPath, "pages", pageCount,
		"year", year, "dpi", dpi, "concurrency", concurrency)

	det := s.cfg.Detection.ScaledFor(dpi)
	outcomes := make([]pageOutcome, pageCount)

	if concurrency == 1 {
		for page := 0; page < pageCount; page++ {
			slog.Info("processing page", "page", page, "progress", fmt.Sprintf("%d/%d", page+1, pageCount))
			outcome := s.processPage(ctx, pdfPath, page, det, year)
			if outcome.err != nil {
				return nil, fmt.Errorf("failed to process page %d: %w", page, outcome.err)
			}
			outcomes[page] = outcome
		}
	} else {
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, concurrency)
		outcomeChan := make(chan pageOutcome, pageCount)

		for page := 0; page < pageCount; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				semaphore <- struct{}{}        // Acquire
				defer func() { <-semaphore }() // Release

				slog.Info("processing page", "page", page, "progress", fmt.Sprintf("%d/%d", page+1, pageCount))
				outcomeChan <- s.processPage(ctx, pdfPath, page, det, year)
			}(page)
		}

		go func() {
			wg.Wait()
			close(outcomeChan)
		}()

		for outcome := range outcomeChan {
			outcomes[outcome.page] = outcome
		}
	}

	return s.assemble(pdfPath, year, outcomes)
}

// assemble merges page outcomes in ascending page order, so a district
// appearing on two pages keeps the later page's events.
func (s *Service) assemble(pdfPath string, year int, outcomes []pageOutcome) (*calendar.Document, error) {
	doc := calendar.NewDocument(year)
	doc.Metadata["generated"] = "auto-parsed"
	doc.Metadata["source"] = filepath.Base(pdfPath)

	for _, outcome := range outcomes {
		if outcome.err != nil {
			return nil, fmt.Errorf("failed to process page %d: %w", outcome.page, outcome.err)
		}
		if outcome.skipped {
			continue
		}

		targets := s.resolver.Targets(outcome.district)
		if len(targets) > 1 {
			slog.Info("expanding combined page", "page", outcome.page,
				"district", outcome.district, "targets", len(targets), "events", len(outcome.events))
			for _, target := range targets {
				doc.Districts[target] = &calendar.District{Events: calendar.CopyEvents(outcome.events)}
			}
			continue
		}

		slog.Info("parsed district", "page", outcome.page,
			"district", targets[0], "events", len(outcome.events))
		doc.Districts[targets[0]] = &calendar.District{Events: outcome.events}
	}

	return doc, nil
}

// processPage runs the full per-page pipeline: text extraction, render,
// grid analysis, event construction.
func (s *Service) processPage(ctx context.Context, pdfPath string, page int, det config.Detection, year int) pageOutcome {
	outcome := pageOutcome{page: page, skipped: true}

	text, err := s.renderer.ExtractText(ctx, pdfPath, page)
	if err != nil {
		slog.Warn("text extraction failed", "page", page, "err", err)
		text = ""
	}

	pngPath, err := s.renderer.RenderPage(ctx, pdfPath, page, det.DPI)
	if err != nil {
		outcome.err = err
		return outcome
	}

	img, err := s.renderer.LoadImage(pngPath)
	if err != nil {
		outcome.err = err
		return outcome
	}
	defer img.Close()

	if s.ocr != nil && countInk(text) < minPageTextChars {
		if recovered, err := s.headerText(img, pngPath); err != nil {
			slog.Debug("ocr fallback failed", "page", page, "err", err)
		} else {
			text = recovered
		}
	}

	outcome.district = s.resolver.Resolve(text, page)

	result := s.ParsePage(img, det)
	if result == nil {
		slog.Warn("skipping page without calendar grid", "page", page, "district", outcome.district)
		return outcome
	}

	outcome.skipped = false
	outcome.events = s.eventsFromPage(result, year)
	return outcome
}

// ParsePage analyzes a single rendered page. It returns nil when the
// detected geometry does not look like a calendar grid, which callers
// treat as a skip signal rather than an error.
func (s *Service) ParsePage(img gocv.Mat, det config.Detection) PageResult {
	boundaries := grid.NewDetector(det).Detect(img)
	if !boundaries.Valid(det.MinRowBoundaries, det.MinColBoundaries) {
		return nil
	}

	locator := pictogram.NewLocator(det)
	result := make(PageResult, len(s.cfg.Signatures))

	for _, sig := range s.cfg.Signatures {
		centroids := locator.Locate(img, sig)

		cells := make([]grid.Cell, 0, len(centroids))
		for _, c := range centroids {
			cell, err := boundaries.Cell(c.X, c.Y)
			if err != nil {
				continue
			}
			if cell.InCalendar() {
				cells = append(cells, cell)
			}
		}
		result[sig.Type] = dedupeCells(cells)
	}

	return result
}

// dedupeCells removes duplicate cells and orders the rest by month,
// then day. Duplicates happen when a pictogram fragments into several
// contours inside the same cell.
func dedupeCells(cells []grid.Cell) []grid.Cell {
	seen := make(map[grid.Cell]struct{}, len(cells))
	unique := make([]grid.Cell, 0, len(cells))
	for _, cell := range cells {
		if _, dup := seen[cell]; dup {
			continue
		}
		seen[cell] = struct{}{}
		unique = append(unique, cell)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Month != unique[j].Month {
			return unique[i].Month < unique[j].Month
		}
		return unique[i].Day < unique[j].Day
	})
	return unique
}

// eventsFromPage turns detected cells into dated events. Waste types
// are walked in configuration order and the sort is stable, so a cell
// hit by two colors yields two events in a fixed order.
func (s *Service) eventsFromPage(result PageResult, year int) []calendar.Event {
	var events []calendar.Event
	for _, sig := range s.cfg.Signatures {
		for _, cell := range result[sig.Type] {
			events = append(events, calendar.Event{
				Date:        calendar.FormatDate(year, cell.Month, cell.Day),
				Type:        sig.Type,
				Description: s.cfg.Description(sig.Type),
			})
		}
	}
	calendar.SortEventsByDate(events)
	return events
}

// headerText crops the title band off the page image and OCRs it.
func (s *Service) headerText(img gocv.Mat, pngPath string) (string, error) {
	height := int(float64(img.Rows()) * headerBandRatio)
	if height < 1 {
		return "", fmt.Errorf("page image too small for header crop")
	}

	band := img.Region(image.Rect(0, 0, img.Cols(), height))
	defer band.Close()

	bandPath := strings.TrimSuffix(pngPath, ".png") + "-header.png"
	if ok := gocv.IMWrite(bandPath, band); !ok {
		return "", fmt.Errorf("failed to write header crop %s", bandPath)
	}

	return s.ocr.TextFromImage(bandPath)
}

// countInk counts the non-space characters of the extracted page text.
func countInk(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}
