package parser

import (
	"errors"
	"testing"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
	"github.com/klabast/wb-services/kalender-parser/internal/config"
	"github.com/klabast/wb-services/kalender-parser/internal/grid"
	"github.com/klabast/wb-services/kalender-parser/internal/locality"
)

func newTestService() *Service {
	cfg := config.Default()
	return &Service{
		cfg:      cfg,
		resolver: locality.NewResolver(cfg.Expansion),
	}
}

func TestEventsFromPage(t *testing.T) {
	s := newTestService()

	result := PageResult{
		"restmuell":   {{Month: 3, Day: 14}, {Month: 1, Day: 2}},
		"biotonne":    {{Month: 1, Day: 2}},
		"papiertonne": {},
		"gelber_sack": {{Month: 1, Day: 9}},
	}

	events := s.eventsFromPage(result, 2026)

	expected := []calendar.Event{
		{Date: "2026-01-02", Type: "restmuell", Description: "Restmüll"},
		{Date: "2026-01-02", Type: "biotonne", Description: "Biotonne"},
		{Date: "2026-01-09", Type: "gelber_sack", Description: "Gelber Sack"},
		{Date: "2026-03-14", Type: "restmuell", Description: "Restmüll"},
	}

	if len(events) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(events))
	}
	for i, want := range expected {
		if events[i] != want {
			t.Errorf("Event %d: expected %+v, got %+v", i, want, events[i])
		}
	}
}

func TestEventsFromPageDeterministic(t *testing.T) {
	s := newTestService()

	result := PageResult{
		"restmuell":   {{Month: 2, Day: 5}, {Month: 2, Day: 12}},
		"biotonne":    {{Month: 2, Day: 5}},
		"gelber_sack": {{Month: 2, Day: 5}},
	}

	first := s.eventsFromPage(result, 2026)
	for run := 0; run < 10; run++ {
		again := s.eventsFromPage(result, 2026)
		if len(again) != len(first) {
			t.Fatalf("Run %d: expected %d events, got %d", run, len(first), len(again))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("Run %d: event %d changed from %+v to %+v", run, i, first[i], again[i])
			}
		}
	}
}

func TestAssembleDirectDistrict(t *testing.T) {
	s := newTestService()

	outcomes := []pageOutcome{
		{page: 0, district: "Siedlinghausen", events: []calendar.Event{
			{Date: "2026-01-05", Type: "restmuell", Description: "Restmüll"},
		}},
	}

	doc, err := s.assemble("/tmp/abfall-kalender-2026.pdf", 2026, outcomes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if doc.Year != 2026 {
		t.Errorf("Expected year 2026, got %d", doc.Year)
	}
	if doc.Metadata["generated"] != "auto-parsed" {
		t.Errorf("Expected generated metadata 'auto-parsed', got %q", doc.Metadata["generated"])
	}
	if doc.Metadata["source"] != "abfall-kalender-2026.pdf" {
		t.Errorf("Expected source basename, got %q", doc.Metadata["source"])
	}

	district, ok := doc.Districts["Siedlinghausen"]
	if !ok {
		t.Fatal("Expected district Siedlinghausen in document")
	}
	if len(district.Events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(district.Events))
	}
}

func TestAssembleExpandsCombinedPage(t *testing.T) {
	s := newTestService()

	events := []calendar.Event{
		{Date: "2026-04-01", Type: "biotonne", Description: "Biotonne"},
		{Date: "2026-04-08", Type: "restmuell", Description: "Restmüll"},
	}
	outcomes := []pageOutcome{
		{page: 0, district: "Neuastenberg / Langewiese", events: events},
	}

	doc, err := s.assemble("combined.pdf", 2026, outcomes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	targets := []string{"Langewiese", "Mollseifen", "Neuastenberg", "Hoheleye"}
	if len(doc.Districts) != len(targets) {
		t.Fatalf("Expected %d districts, got %d", len(targets), len(doc.Districts))
	}

	for _, name := range targets {
		district, ok := doc.Districts[name]
		if !ok {
			t.Errorf("Expected expanded district %s", name)
			continue
		}
		if len(district.Events) != len(events) {
			t.Errorf("District %s: expected %d events, got %d", name, len(events), len(district.Events))
			continue
		}
		for i, want := range events {
			if district.Events[i] != want {
				t.Errorf("District %s event %d: expected %+v, got %+v", name, i, want, district.Events[i])
			}
		}
	}

	// Expanded copies must be independent of each other.
	doc.Districts["Langewiese"].Events[0].Type = "mutated"
	if doc.Districts["Mollseifen"].Events[0].Type != "biotonne" {
		t.Error("Expected expanded district event lists to be independent copies")
	}
	if events[0].Type != "biotonne" {
		t.Error("Expected source events to be unaffected by mutation of an expanded copy")
	}
}

func TestAssembleLastPageWins(t *testing.T) {
	s := newTestService()

	outcomes := []pageOutcome{
		{page: 0, district: "Winterberg", events: []calendar.Event{
			{Date: "2026-01-05", Type: "restmuell", Description: "Restmüll"},
		}},
		{page: 1, district: "Winterberg", events: []calendar.Event{
			{Date: "2026-02-02", Type: "biotonne", Description: "Biotonne"},
		}},
	}

	doc, err := s.assemble("dup.pdf", 2026, outcomes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Districts) != 1 {
		t.Fatalf("Expected 1 district, got %d", len(doc.Districts))
	}
	district := doc.Districts["Winterberg"]
	if len(district.Events) != 1 || district.Events[0].Date != "2026-02-02" {
		t.Errorf("Expected the later page's events to win, got %+v", district.Events)
	}
}

func TestAssembleSkipsNonCalendarPages(t *testing.T) {
	s := newTestService()

	outcomes := []pageOutcome{
		{page: 0, skipped: true, district: "Seite_0"},
		{page: 1, district: "Züschen", events: []calendar.Event{
			{Date: "2026-01-07", Type: "papiertonne", Description: "Papiertonne"},
		}},
	}

	doc, err := s.assemble("mixed.pdf", 2026, outcomes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Districts) != 1 {
		t.Fatalf("Expected 1 district, got %d", len(doc.Districts))
	}
	if _, ok := doc.Districts["Seite_0"]; ok {
		t.Error("Expected skipped page to contribute no district")
	}
}

func TestAssemblePropagatesPageErrors(t *testing.T) {
	s := newTestService()

	outcomes := []pageOutcome{
		{page: 0, district: "Winterberg"},
		{page: 1, err: errors.New("render failed")},
	}

	if _, err := s.assemble("broken.pdf", 2026, outcomes); err == nil {
		t.Fatal("Expected error from broken page, got nil")
	}
}

func TestDedupeCells(t *testing.T) {
	tests := []struct {
		name     string
		cells    []grid.Cell
		expected []grid.Cell
	}{
		{
			name:     "empty",
			cells:    nil,
			expected: []grid.Cell{},
		},
		{
			name:     "duplicates collapse",
			cells:    []grid.Cell{{Month: 2, Day: 10}, {Month: 2, Day: 10}, {Month: 1, Day: 3}},
			expected: []grid.Cell{{Month: 1, Day: 3}, {Month: 2, Day: 10}},
		},
		{
			name:     "sorted by month then day",
			cells:    []grid.Cell{{Month: 12, Day: 1}, {Month: 1, Day: 31}, {Month: 1, Day: 2}},
			expected: []grid.Cell{{Month: 1, Day: 2}, {Month: 1, Day: 31}, {Month: 12, Day: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeCells(tt.cells)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d cells, got %d", len(tt.expected), len(got))
			}
			for i, want := range tt.expected {
				if got[i] != want {
					t.Errorf("Cell %d: expected %v, got %v", i, want, got[i])
				}
			}
		})
	}
}

func TestCountInk(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty", "", 0},
		{"only whitespace", " \n\t  \r\n", 0},
		{"title line", "Abfall-Kalender 2026 Winterberg", 29},
		{"unicode text", "Grönebach", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countInk(tt.text); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
