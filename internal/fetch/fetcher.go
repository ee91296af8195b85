package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// pdfMagic is the signature every PDF starts with.
const pdfMagic = "%PDF-"

// minPDFSize guards against servers answering with a tiny error body
// and a 200 status.
const minPDFSize = 1000

// Fetcher downloads calendar PDFs from the municipal site.
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a fetcher with a sane timeout for a few megabytes
// of PDF.
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Download retrieves the PDF at url and writes it to outputPath. The
// file appears atomically: the body streams to a temp file in the
// target directory which is renamed into place on success.
func (f *Fetcher) Download(ctx context.Context, url, outputPath string) error {
	slog.Info("downloading calendar", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d for %s", resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); !acceptableContentType(ct) {
		return fmt.Errorf("unexpected content type %q for %s", ct, url)
	}

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, header); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if string(header) != pdfMagic {
		return fmt.Errorf("response from %s does not look like a PDF", url)
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(header), resp.Body))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if written < minPDFSize {
		os.Remove(tmpPath)
		return fmt.Errorf("downloaded file too small (%d bytes)", written)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	slog.Info("downloaded calendar", "path", outputPath, "bytes", written)
	return nil
}

// acceptableContentType reports whether the server's Content-Type is
// plausible for a PDF download. Some servers omit the header or send a
// generic binary type; those pass, the magic check catches the rest.
func acceptableContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	switch mediaType {
	case "application/pdf", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}
