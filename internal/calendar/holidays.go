package calendar

import "time"

// NRWHolidays returns all public holidays in North Rhine-Westphalia for
// the given year, keyed by YYYY-MM-DD date.
func NRWHolidays(year int) map[string]string {
	holidays := map[string]string{
		FormatDate(year, 1, 1):   "Neujahr",
		FormatDate(year, 5, 1):   "Tag der Arbeit",
		FormatDate(year, 10, 3):  "Tag der Deutschen Einheit",
		FormatDate(year, 11, 1):  "Allerheiligen",
		FormatDate(year, 12, 25): "1. Weihnachtstag",
		FormatDate(year, 12, 26): "2. Weihnachtstag",
	}

	easter := easterSunday(year)
	movable := map[int]string{
		-2: "Karfreitag",
		1:  "Ostermontag",
		39: "Christi Himmelfahrt",
		50: "Pfingstmontag",
		60: "Fronleichnam",
	}
	for offset, name := range movable {
		holidays[easter.AddDate(0, 0, offset).Format("2006-01-02")] = name
	}

	return holidays
}

// easterSunday calculates Easter Sunday using the Meeus/Jones/Butcher
// algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h+l-7*m+114)%31 + 1)

	// Noon avoids timezone edge cases when formatting to YYYY-MM-DD.
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}
