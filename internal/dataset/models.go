package dataset

import "github.com/klabast/wb-services/kalender-parser/internal/calendar"

// ReferenceRecord is one expected collection event from a ground-truth
// file. The flat row layout keeps the files writable from spreadsheets
// and notebooks alike.
type ReferenceRecord struct {
	District    string `json:"district" parquet:"district"`
	Date        string `json:"date" parquet:"date"`
	Type        string `json:"type" parquet:"type"`
	Description string `json:"description" parquet:"description"`
}

// Event converts the record to its calendar form.
func (r *ReferenceRecord) Event() calendar.Event {
	return calendar.Event{
		Date:        r.Date,
		Type:        r.Type,
		Description: r.Description,
	}
}

// GroupByDistrict folds flat records into per-district event lists,
// sorted by date. Records without a district or date are dropped.
func GroupByDistrict(records []ReferenceRecord) map[string][]calendar.Event {
	grouped := make(map[string][]calendar.Event)
	for i := range records {
		r := &records[i]
		if r.District == "" || r.Date == "" {
			continue
		}
		grouped[r.District] = append(grouped[r.District], r.Event())
	}
	for _, events := range grouped {
		calendar.SortEventsByDate(events)
	}
	return grouped
}
