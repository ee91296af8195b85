package calendar

import (
	"fmt"
	"sort"
)

// Event represents a single waste collection event
type Event struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// District represents a district with its waste collection events
type District struct {
	Events []Event `json:"events"`
}

// Document represents the complete calendar data for one year
type Document struct {
	Year      int                  `json:"year"`
	Districts map[string]*District `json:"districts"`
	Metadata  map[string]string    `json:"metadata"`
}

// NewDocument returns an empty document for the given year
func NewDocument(year int) *Document {
	return &Document{
		Year:      year,
		Districts: make(map[string]*District),
		Metadata:  make(map[string]string),
	}
}

// FormatDate formats a collection date as YYYY-MM-DD with zero-padded
// month and day. Lexicographic order on the result equals date order.
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}

// SortEventsByDate sorts events by date in ascending order. The sort
// is stable so same-day events keep their waste-type order.
func SortEventsByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
}

// CopyEvents returns an independently owned copy of the event list.
// Districts produced by locality expansion must not share slices.
func CopyEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
