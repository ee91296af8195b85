package verify

import (
	"testing"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
)

func TestCheckPlausibility(t *testing.T) {
	events := []calendar.Event{
		{Date: "2026-01-05", Type: "restmuell"},   // Monday, fine
		{Date: "2026-01-04", Type: "biotonne"},    // Sunday
		{Date: "2026-05-01", Type: "restmuell"},   // Tag der Arbeit
		{Date: "2026-04-03", Type: "papiertonne"}, // Karfreitag
		{Date: "garbled", Type: "restmuell"},
	}

	flags := CheckPlausibility(2026, events)
	if len(flags) != 4 {
		t.Fatalf("Expected 4 flags, got %d: %+v", len(flags), flags)
	}

	reasons := make(map[string]string)
	for _, flag := range flags {
		reasons[flag.Date] = flag.Reason
	}

	if reasons["2026-01-04"] != "Sonntag" {
		t.Errorf("Expected Sonntag for 2026-01-04, got %s", reasons["2026-01-04"])
	}
	if reasons["2026-05-01"] != "Tag der Arbeit" {
		t.Errorf("Expected Tag der Arbeit for 2026-05-01, got %s", reasons["2026-05-01"])
	}
	if reasons["2026-04-03"] != "Karfreitag" {
		t.Errorf("Expected Karfreitag for 2026-04-03, got %s", reasons["2026-04-03"])
	}
	if reasons["garbled"] != "invalid date" {
		t.Errorf("Expected invalid date flag, got %s", reasons["garbled"])
	}
}

func TestCheckPlausibilityHolidayBeatsSunday(t *testing.T) {
	// Allerheiligen 2026 falls on a Sunday; the holiday name wins.
	flags := CheckPlausibility(2026, []calendar.Event{
		{Date: "2026-11-01", Type: "restmuell"},
	})

	if len(flags) != 1 {
		t.Fatalf("Expected 1 flag, got %d", len(flags))
	}
	if flags[0].Reason != "Allerheiligen" {
		t.Errorf("Expected Allerheiligen, got %s", flags[0].Reason)
	}
}

func TestCheckPlausibilityCleanWeek(t *testing.T) {
	events := []calendar.Event{
		{Date: "2026-01-05", Type: "restmuell"},
		{Date: "2026-01-06", Type: "biotonne"},
		{Date: "2026-01-07", Type: "papiertonne"},
		{Date: "2026-01-08", Type: "gelber_sack"},
		{Date: "2026-01-09", Type: "restmuell"},
	}

	if flags := CheckPlausibility(2026, events); len(flags) != 0 {
		t.Errorf("Expected no flags for a clean week, got %+v", flags)
	}
}
