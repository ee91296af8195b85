package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
)

// ICS fields the downstream calendar service and its subscribers
// already rely on. Changing these breaks stable event UIDs.
const (
	icsProductID = "-//Winterberg//Abfallkalender//DE"
	icsTimezone  = "Europe/Berlin"
	uidDomain    = "abfallkalender.winterberg.de"
)

// Format identifies an output encoding.
type Format string

const (
	FormatICS     Format = "ics"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatJSONL   Format = "jsonl"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatICS:
		return FormatICS, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	case FormatJSONL:
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: ics, csv, parquet, jsonl)", s)
}

// EventRow is the flat per-event row used by the columnar formats.
type EventRow struct {
	District    string `json:"district" parquet:"district"`
	Date        string `json:"date" parquet:"date"`
	Type        string `json:"type" parquet:"type"`
	Description string `json:"description" parquet:"description"`
}

// Exporter writes district calendars in consumer-facing formats.
type Exporter struct {
	outputDir string
	now       func() time.Time
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// ExportDocument writes the document in the given format and returns
// the created file paths. An empty district exports every district;
// ics and csv then produce one file per district, the columnar formats
// one file carrying the district as a column.
func (e *Exporter) ExportDocument(doc *calendar.Document, district string, format Format) ([]string, error) {
	districts, err := selectDistricts(doc, district)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	switch format {
	case FormatICS, FormatCSV:
		paths := make([]string, 0, len(districts))
		for _, name := range districts {
			path, err := e.exportDistrict(doc, name, format)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	case FormatParquet, FormatJSONL:
		path, err := e.exportRows(doc, districts, district, format)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// selectDistricts resolves the district filter to a sorted name list.
func selectDistricts(doc *calendar.Document, district string) ([]string, error) {
	if district != "" {
		if _, ok := doc.Districts[district]; !ok {
			return nil, fmt.Errorf("district %q not in %d document", district, doc.Year)
		}
		return []string{district}, nil
	}

	names := make([]string, 0, len(doc.Districts))
	for name := range doc.Districts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (e *Exporter) exportDistrict(doc *calendar.Document, district string, format Format) (string, error) {
	filename := fmt.Sprintf("abfallkalender_%s_%d.%s", fileSafe(district), doc.Year, format)
	path := filepath.Join(e.outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	events := doc.Districts[district].Events
	switch format {
	case FormatICS:
		err = writeICS(file, district, doc.Year, events, e.now().UTC())
	case FormatCSV:
		err = writeCSV(file, events)
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	slog.Info("exported district", "district", district, "format", format,
		"events", len(events), "path", path)
	return path, nil
}

func (e *Exporter) exportRows(doc *calendar.Document, districts []string, district string, format Format) (string, error) {
	rows := make([]EventRow, 0)
	for _, name := range districts {
		for _, event := range doc.Districts[name].Events {
			rows = append(rows, EventRow{
				District:    name,
				Date:        event.Date,
				Type:        event.Type,
				Description: event.Description,
			})
		}
	}

	filename := fmt.Sprintf("abfallkalender_%d.%s", doc.Year, format)
	if district != "" {
		filename = fmt.Sprintf("abfallkalender_%s_%d.%s", fileSafe(district), doc.Year, format)
	}
	path := filepath.Join(e.outputDir, filename)

	var err error
	switch format {
	case FormatParquet:
		err = writeParquet(path, rows)
	case FormatJSONL:
		err = writeJSONL(path, rows)
	}
	if err != nil {
		return "", err
	}

	slog.Info("exported events", "format", format, "rows", len(rows), "path", path)
	return path, nil
}

// writeICS emits the same VCALENDAR layout the calendar service serves,
// so files and subscription feeds stay interchangeable.
func writeICS(w io.Writer, district string, year int, events []calendar.Event, now time.Time) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "BEGIN:VCALENDAR")
	fmt.Fprintln(bw, "VERSION:2.0")
	fmt.Fprintf(bw, "PRODID:%s\n", icsProductID)
	fmt.Fprintf(bw, "X-WR-CALNAME:Abfallkalender %s %d\n", district, year)
	fmt.Fprintf(bw, "X-WR-TIMEZONE:%s\n", icsTimezone)
	fmt.Fprintln(bw, "CALSCALE:GREGORIAN")

	stamp := now.Format("20060102T150405Z")
	for _, event := range events {
		eventDate, err := time.Parse("2006-01-02", event.Date)
		if err != nil {
			slog.Warn("skipping event with invalid date", "date", event.Date, "district", district)
			continue
		}

		fmt.Fprintln(bw, "BEGIN:VEVENT")
		fmt.Fprintf(bw, "UID:%s-%s-%s@%s\n", event.Date, event.Type, district, uidDomain)
		fmt.Fprintf(bw, "DTSTAMP:%s\n", stamp)
		fmt.Fprintf(bw, "DTSTART;VALUE=DATE:%s\n", eventDate.Format("20060102"))
		fmt.Fprintf(bw, "DTEND;VALUE=DATE:%s\n", eventDate.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(bw, "SUMMARY:%s\n", event.Description)
		fmt.Fprintf(bw, "DESCRIPTION:Abfuhr %s in %s\n", event.Description, district)
		fmt.Fprintf(bw, "LOCATION:%s\n", district)
		fmt.Fprintln(bw, "END:VEVENT")
	}

	fmt.Fprintln(bw, "END:VCALENDAR")
	return bw.Flush()
}

// writeCSV emits the download layout of the calendar service.
func writeCSV(w io.Writer, events []calendar.Event) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Datum,Abfalltyp,Beschreibung")
	for _, event := range events {
		fmt.Fprintf(bw, "%s,%s,%s\n", event.Date, event.Type, event.Description)
	}
	return bw.Flush()
}

func writeParquet(path string, rows []EventRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := parquet.NewGenericWriter[EventRow](file)
	_, err = writer.Write(rows)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeJSONL(path string, rows []EventRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	bw := bufio.NewWriter(file)
	encodeErr := func() error {
		for _, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if _, err := bw.Write(append(data, '\n')); err != nil {
				return err
			}
		}
		return bw.Flush()
	}()

	if closeErr := file.Close(); encodeErr == nil {
		encodeErr = closeErr
	}
	if encodeErr != nil {
		return fmt.Errorf("failed to write %s: %w", path, encodeErr)
	}
	return nil
}

// fileSafe keeps district names usable as path components.
func fileSafe(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	return strings.Join(strings.Fields(name), "_")
}
