package schedule

import (
	"time"
)

// CycleLength is the number of weeks in one collection rotation
const CycleLength = 4

// Supported year range. MinYear is the first full year of the Gregorian calendar.
const (
	MinYear = 1583
	MaxYear = 9999
)

// CycleMap maps every date of one year to its cycle week (1..4).
// It is immutable once built.
type CycleMap struct {
	year   int
	cycles []uint8 // indexed by YearDay()-1
}

// ValidateYear returns an UnsupportedYearError if year is outside MinYear..MaxYear
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &UnsupportedYearError{Year: year}
	}
	return nil
}

// CycleForISOWeek returns the cycle week for an ISO week number.
// ISO week 1 is folded into cycle 4 so the rotation stays continuous
// across the year seam; ISO week 2 starts cycle 1.
func CycleForISOWeek(week int) int {
	if week == 1 {
		return CycleLength
	}
	return ((week-2)%CycleLength+CycleLength)%CycleLength + 1
}

// BuildCycleMap computes the cycle week of every date in year
func BuildCycleMap(year int) (*CycleMap, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}

	start := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 12, 0, 0, 0, time.UTC)

	cm := &CycleMap{year: year, cycles: make([]uint8, 0, 366)}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		cm.cycles = append(cm.cycles, uint8(CycleForISOWeek(week)))
	}
	return cm, nil
}

// Year returns the year the map covers
func (cm *CycleMap) Year() int {
	return cm.year
}

// Len returns the number of days in the map (365 or 366)
func (cm *CycleMap) Len() int {
	return len(cm.cycles)
}

// Cycle returns the cycle week of date. ok is false if date lies outside the map's year.
func (cm *CycleMap) Cycle(date time.Time) (cycle int, ok bool) {
	if cm == nil || date.Year() != cm.year {
		return 0, false
	}
	return int(cm.cycles[date.YearDay()-1]), true
}

// Each calls fn for every date of the year in order
func (cm *CycleMap) Each(fn func(date time.Time, cycle int)) {
	start := time.Date(cm.year, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range cm.cycles {
		fn(start.AddDate(0, 0, i), int(c))
	}
}
