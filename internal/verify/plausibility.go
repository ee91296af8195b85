package verify

import (
	"time"

	"github.com/klabast/wb-services/kalender-parser/internal/calendar"
)

// PlausibilityFlag marks a parsed event on a day with no regular waste
// collection. Such events are usually misread pictograms.
type PlausibilityFlag struct {
	Date   string `yaml:"date"`
	Type   string `yaml:"type"`
	Reason string `yaml:"reason"`
}

// CheckPlausibility flags events falling on Sundays or NRW public
// holidays.
func CheckPlausibility(year int, events []calendar.Event) []PlausibilityFlag {
	holidays := calendar.NRWHolidays(year)

	var flags []PlausibilityFlag
	for _, event := range events {
		date, err := time.Parse("2006-01-02", event.Date)
		if err != nil {
			flags = append(flags, PlausibilityFlag{
				Date:   event.Date,
				Type:   event.Type,
				Reason: "invalid date",
			})
			continue
		}

		if name, ok := holidays[event.Date]; ok {
			flags = append(flags, PlausibilityFlag{
				Date:   event.Date,
				Type:   event.Type,
				Reason: name,
			})
			continue
		}

		if date.Weekday() == time.Sunday {
			flags = append(flags, PlausibilityFlag{
				Date:   event.Date,
				Type:   event.Type,
				Reason: "Sonntag",
			})
		}
	}

	return flags
}
