package app

import (
	"time"
)

// GetNorwegianHolidays returns all public holidays in Norway for the given year
func GetNorwegianHolidays(year int) map[string]string {
	holidays := make(map[string]string)

	// Fixed holidays
	holidays[formatDate(year, 1, 1)] = "Nyttårsdag"
	holidays[formatDate(year, 5, 1)] = "Arbeidernes dag"
	holidays[formatDate(year, 5, 17)] = "Grunnlovsdag"
	holidays[formatDate(year, 12, 25)] = "Første juledag"
	holidays[formatDate(year, 12, 26)] = "Andre juledag"

	// Easter-based holidays (movable)
	easter := calculateEaster(year)

	holidays[formatDateFromTime(easter.AddDate(0, 0, -3))] = "Skjærtorsdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, -2))] = "Langfredag"
	holidays[formatDateFromTime(easter)] = "Første påskedag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 1))] = "Andre påskedag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 39))] = "Kristi himmelfartsdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 49))] = "Første pinsedag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 50))] = "Andre pinsedag"

	return holidays
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
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
	day := ((h + l - 7*m + 114) % 31) + 1

	// Noon keeps the date stable when formatted in any zone
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

// formatDate formats a date as YYYY-MM-DD
func formatDate(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// formatDateFromTime formats a time.Time as YYYY-MM-DD
func formatDateFromTime(t time.Time) string {
	return t.Format("2006-01-02")
}
