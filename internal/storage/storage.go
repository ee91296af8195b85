package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
)

const (
	tmpSuffix    = ".tmp.json"
	backupSuffix = ".backup"
	filePerm     = 0644
)

// DocumentStore keeps parsed calendar documents in memory, one per
// year. File persistence uses the same single-year JSON layout the
// downstream calendar service reads.
type DocumentStore struct {
	documents map[int]*calendar.Document
	mu        sync.RWMutex
}

func New() *DocumentStore {
	return &DocumentStore{
		documents: make(map[int]*calendar.Document),
	}
}

// Load reads a document file into the store and returns it.
func (s *DocumentStore) Load(path string) (*calendar.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc calendar.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if doc.Year == 0 {
		return nil, fmt.Errorf("document %s has no year", path)
	}

	s.Set(&doc)
	return &doc, nil
}

func (s *DocumentStore) Get(year int) (*calendar.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, exists := s.documents[year]
	return doc, exists
}

func (s *DocumentStore) Set(doc *calendar.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.Year] = doc
}

// Years returns the stored years in ascending order.
func (s *DocumentStore) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := make([]int, 0, len(s.documents))
	for year := range s.documents {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Save writes one year's document to path. The write is atomic: the
// document lands in a temp file that is renamed over the target, and an
// existing target is kept as a .backup first.
func (s *DocumentStore) Save(year int, path string) error {
	doc, exists := s.Get(year)
	if !exists {
		return fmt.Errorf("no document for year %d", year)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+backupSuffix); err != nil {
			slog.Warn("failed to create backup", "path", path, "err", err)
		}
	}

	tmpPath := path + tmpSuffix
	if err := os.WriteFile(tmpPath, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	slog.Info("saved calendar document", "year", year, "path", path,
		"districts", len(doc.Districts))
	return nil
}
