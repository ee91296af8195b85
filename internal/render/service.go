package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/png"

	"gocv.io/x/gocv"
)

// Provider identifies the external tool used to rasterize PDF pages.
type Provider string

const (
	ProviderPoppler     Provider = "poppler"
	ProviderImageMagick Provider = "imagemagick"
)

// Service renders PDF pages to PNG and extracts their text through
// external tools. Poppler is preferred; ImageMagick covers hosts
// without it. Page indexes are 0-based throughout.
type Service struct {
	provider Provider
	workDir  string
}

// NewService probes the installed converters and prepares a scratch
// directory for rendered pages. KALENDER_RENDERER forces a provider.
func NewService() (*Service, error) {
	provider := Provider(os.Getenv("KALENDER_RENDERER"))
	switch provider {
	case ProviderPoppler, ProviderImageMagick:
	case "":
		provider = detectProvider()
	default:
		return nil, fmt.Errorf("unsupported renderer %q", provider)
	}
	if provider == "" {
		return nil, fmt.Errorf("no PDF renderer found: install poppler-utils or ImageMagick")
	}

	workDir, err := os.MkdirTemp("", "kalender-pages-")
	if err != nil {
		return nil, fmt.Errorf("failed to create render work dir: %w", err)
	}

	slog.Debug("renderer ready", "provider", provider, "work_dir", workDir)
	return &Service{provider: provider, workDir: workDir}, nil
}

func detectProvider() Provider {
	if _, err := exec.LookPath("pdftoppm"); err == nil {
		return ProviderPoppler
	}
	for _, name := range []string{"magick", "convert"} {
		if _, err := exec.LookPath(name); err == nil {
			return ProviderImageMagick
		}
	}
	return ""
}

// Provider returns the selected rendering backend.
func (s *Service) Provider() Provider {
	return s.provider
}

// Cleanup removes the scratch directory and every rendered page in it.
func (s *Service) Cleanup() {
	if err := os.RemoveAll(s.workDir); err != nil {
		slog.Warn("failed to remove render work dir", "dir", s.workDir, "err", err)
	}
}

// PageCount returns the number of pages in the PDF.
func (s *Service) PageCount(ctx context.Context, pdfPath string) (int, error) {
	if _, err := exec.LookPath("pdfinfo"); err == nil {
		out, err := exec.CommandContext(ctx, "pdfinfo", pdfPath).Output()
		if err != nil {
			return 0, fmt.Errorf("failed to read PDF info: %w", err)
		}
		return parsePageCount(string(out))
	}

	if _, err := exec.LookPath("magick"); err == nil {
		out, err := exec.CommandContext(ctx, "magick", "identify", pdfPath).Output()
		if err != nil {
			return 0, fmt.Errorf("failed to identify PDF: %w", err)
		}
		return countIdentifyPages(string(out)), nil
	}
	if _, err := exec.LookPath("identify"); err == nil {
		out, err := exec.CommandContext(ctx, "identify", pdfPath).Output()
		if err != nil {
			return 0, fmt.Errorf("failed to identify PDF: %w", err)
		}
		return countIdentifyPages(string(out)), nil
	}

	return 0, fmt.Errorf("no tool available to count PDF pages")
}

// parsePageCount pulls the page total out of pdfinfo output.
func parsePageCount(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("failed to parse page count %q: %w", fields[1], err)
		}
		return count, nil
	}
	return 0, fmt.Errorf("no page count in PDF info output")
}

// countIdentifyPages counts the per-page lines of ImageMagick identify.
func countIdentifyPages(out string) int {
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// RenderPage rasterizes one page at the given DPI and returns the PNG
// path inside the service's scratch directory. A render failure is
// fatal for the whole document, matching the open-failure taxonomy.
func (s *Service) RenderPage(ctx context.Context, pdfPath string, page, dpi int) (string, error) {
	switch s.provider {
	case ProviderPoppler:
		return s.renderWithPoppler(ctx, pdfPath, page, dpi)
	case ProviderImageMagick:
		return s.renderWithImageMagick(ctx, pdfPath, page, dpi)
	default:
		return "", fmt.Errorf("unsupported renderer %q", s.provider)
	}
}

func (s *Service) renderWithPoppler(ctx context.Context, pdfPath string, page, dpi int) (string, error) {
	prefix := filepath.Join(s.workDir, fmt.Sprintf("page-%d", page))
	pageArg := strconv.Itoa(page + 1) // pdftoppm counts from 1

	cmd := exec.CommandContext(ctx, "pdftoppm", "-png",
		"-f", pageArg, "-l", pageArg, "-r", strconv.Itoa(dpi), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to render page %d: %w: %s", page, err, strings.TrimSpace(string(out)))
	}

	return findRenderedPage(prefix, page+1)
}

// findRenderedPage locates pdftoppm's output file. The page number
// suffix is zero-padded to the document's page-count width, so probe
// the common widths.
func findRenderedPage(prefix string, page int) (string, error) {
	for _, suffix := range []string{
		fmt.Sprintf("-%d.png", page),
		fmt.Sprintf("-%02d.png", page),
		fmt.Sprintf("-%03d.png", page),
	} {
		path := prefix + suffix
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("rendered page not found under %s", prefix)
}

func (s *Service) renderWithImageMagick(ctx context.Context, pdfPath string, page, dpi int) (string, error) {
	outputPath := filepath.Join(s.workDir, fmt.Sprintf("page-%d.png", page))
	pageRef := fmt.Sprintf("%s[%d]", pdfPath, page) // ImageMagick counts from 0

	for _, name := range []string{"magick", "convert"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		args := []string{"-density", strconv.Itoa(dpi), pageRef, outputPath}
		if name == "magick" {
			args = append([]string{"convert"}, args...)
		}
		cmd := exec.CommandContext(ctx, name, args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("failed to render page %d: %w: %s", page, err, strings.TrimSpace(string(out)))
		}
		if _, err := os.Stat(outputPath); err == nil {
			return outputPath, nil
		}
	}

	return "", fmt.Errorf("rendered page not found at %s", outputPath)
}

// ExtractText returns the embedded text of one page with line breaks
// preserved. Scanned documents without a text layer yield an empty
// string, which is not an error: the locality resolver has fallbacks.
func (s *Service) ExtractText(ctx context.Context, pdfPath string, page int) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		slog.Debug("pdftotext not available, skipping text extraction", "page", page)
		return "", nil
	}

	pageArg := strconv.Itoa(page + 1)
	out, err := exec.CommandContext(ctx, "pdftotext",
		"-f", pageArg, "-l", pageArg, "-layout", pdfPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page, err)
	}
	return string(out), nil
}

// LoadImage reads a rendered page into a 3-channel BGR Mat. The PNG is
// sanity-checked with a config decode before OpenCV touches it.
func (s *Service) LoadImage(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to open rendered page: %w", err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode rendered page %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return gocv.NewMat(), fmt.Errorf("rendered page %s has zero dimensions", path)
	}

	// IMReadColor normalizes alpha channels away, so the pipeline
	// always sees 3-channel BGR regardless of the renderer's output.
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return img, fmt.Errorf("failed to read rendered page %s", path)
	}
	return img, nil
}
