package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads ground-truth reference files. The format is detected
// from the file extension.
type Loader struct {
	referencePath string
}

func NewLoader(referencePath string) *Loader {
	return &Loader{
		referencePath: referencePath,
	}
}

// Load reads every record from the reference file.
func (l *Loader) Load() ([]ReferenceRecord, error) {
	return l.load(0)
}

// LoadSample reads at most limit records, which keeps quick validation
// runs quick.
func (l *Loader) LoadSample(limit int) ([]ReferenceRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sample limit must be positive, got %d", limit)
	}
	return l.load(limit)
}

func (l *Loader) load(limit int) ([]ReferenceRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.referencePath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported reference format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// loadJSONL reads newline-delimited JSON records. limit 0 means all.
func (l *Loader) loadJSONL(limit int) ([]ReferenceRecord, error) {
	file, err := os.Open(l.referencePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer file.Close()

	var records []ReferenceRecord
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record ReferenceRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading reference file: %w", err)
	}

	slog.Debug("loaded reference records", "path", l.referencePath,
		"format", "jsonl", "records", len(records))
	return records, nil
}

// loadParquet reads records in batches. limit 0 means all.
func (l *Loader) loadParquet(limit int) ([]ReferenceRecord, error) {
	file, err := os.Open(l.referencePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat reference file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[ReferenceRecord](pf)
	defer reader.Close()

	var records []ReferenceRecord
	rows := make([]ReferenceRecord, 128)

	for limit <= 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && len(records)+n > limit {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("loaded reference records", "path", l.referencePath,
		"format", "parquet", "records", len(records))
	return records, nil
}
