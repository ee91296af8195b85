package ocr

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Service recovers text from rendered page images via Tesseract. It is
// the fallback for scanned calendars whose PDF carries no text layer;
// the pipeline only needs it to read the title line, so failures stay
// soft and the caller falls through to the synthetic page name.
type Service struct {
	lang string
}

// NewService creates an OCR service. KALENDER_OCR_LANG overrides the
// default German language pack.
func NewService() *Service {
	lang := os.Getenv("KALENDER_OCR_LANG")
	if lang == "" {
		lang = "deu"
	}
	return &Service{lang: lang}
}

// TextFromImage runs Tesseract over the image at path and returns the
// recognized text with line breaks preserved.
func (s *Service) TextFromImage(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(s.lang); err != nil {
		return "", fmt.Errorf("failed to set OCR language %q: %w", s.lang, err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to run OCR: %w", err)
	}

	slog.Debug("recovered text via OCR", "lang", s.lang, "chars", len(text))
	return text, nil
}
