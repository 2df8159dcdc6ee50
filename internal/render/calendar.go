// Package render lays out a year of month grids with collection days
// highlighted, and draws that layout to PNG or terminal text.
package render

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/klabast/wb-services/tomme-kalender/internal/resolver"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

// Page layout: 12 months on a 4x3 grid, each month 7 columns (Monday
// first) by at most 6 week rows.
const (
	PageRows     = 4
	PageCols     = 3
	WeekdayCols  = 7
	MaxMonthRows = 6
)

// WeekdayNames are the column headers, Monday first
var WeekdayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var weekdayLong = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Options control the page decorations
type Options struct {
	// Title defaults to "Collection calendar <year>"
	Title string
	// Holidays maps YYYY-MM-DD to a holiday name; those cells are marked
	Holidays map[string]string
}

// Calendar is a fully laid out year
type Calendar struct {
	Title  string        `json:"title"`
	Year   int           `json:"year"`
	Months []Month       `json:"months"`
	Legend []LegendEntry `json:"legend"`
}

// LegendEntry describes one distinct route and its colour
type LegendEntry struct {
	Route   schedule.Route `json:"route"`
	Label   string         `json:"label"`
	Color   color.RGBA     `json:"-"`
	Hex     string         `json:"color"`
	Streams []string       `json:"streams,omitempty"`
}

// Month is one self-contained month grid
type Month struct {
	Month   time.Month `json:"month"`
	Name    string     `json:"name"`
	PageRow int        `json:"pageRow"`
	PageCol int        `json:"pageCol"`
	Rows    int        `json:"rows"`
	Cells   []Cell     `json:"cells"`
}

// Cell is one day of a month grid
type Cell struct {
	Date    time.Time `json:"date"`
	Day     int       `json:"day"`
	Row     int       `json:"row"`
	Col     int       `json:"col"`
	Route   int       `json:"route"` // index into Legend, -1 if no collection
	Holiday string    `json:"holiday,omitempty"`
}

// Highlighted reports whether a collection happens on the cell's day
func (c Cell) Highlighted() bool {
	return c.Route >= 0
}

// Render lays out year with every day that matches one of schedules
// highlighted in its route's colour.
func Render(schedules []resolver.Schedule, cm *schedule.CycleMap, year int, opts Options) (*Calendar, error) {
	if err := schedule.ValidateYear(year); err != nil {
		return nil, err
	}
	if cm == nil || cm.Year() != year {
		return nil, fmt.Errorf("cycle map does not cover year %d", year)
	}

	cal := &Calendar{Title: opts.Title, Year: year}
	if cal.Title == "" {
		cal.Title = fmt.Sprintf("Collection calendar %d", year)
	}

	routeIndex := make(map[schedule.Route]int)
	for _, s := range schedules {
		r := s.Route()
		i, seen := routeIndex[r]
		if !seen {
			i = len(cal.Legend)
			routeIndex[r] = i
			c := PaletteColor(i)
			cal.Legend = append(cal.Legend, LegendEntry{
				Route: r,
				Label: RouteLabel(r),
				Color: c,
				Hex:   Hex(c),
			})
		}
		if st := s.Record.Stream; st != "" && !contains(cal.Legend[i].Streams, st) {
			cal.Legend[i].Streams = append(cal.Legend[i].Streams, st)
		}
	}

	for m := time.January; m <= time.December; m++ {
		cal.Months = append(cal.Months, layoutMonth(year, m, cm, routeIndex, opts.Holidays))
	}
	return cal, nil
}

func layoutMonth(year int, m time.Month, cm *schedule.CycleMap, routeIndex map[schedule.Route]int, holidays map[string]string) Month {
	first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	offset := schedule.ISOWeekday(first) - 1

	month := Month{
		Month:   m,
		Name:    m.String(),
		PageRow: int(m-1) / PageCols,
		PageCol: int(m-1) % PageCols,
		Rows:    (offset + days + WeekdayCols - 1) / WeekdayCols,
		Cells:   make([]Cell, 0, days),
	}

	for d := 1; d <= days; d++ {
		date := first.AddDate(0, 0, d-1)
		pos := offset + d - 1
		cell := Cell{
			Date:    date,
			Day:     d,
			Row:     pos / WeekdayCols,
			Col:     pos % WeekdayCols,
			Route:   -1,
			Holiday: holidays[date.Format("2006-01-02")],
		}
		if cycle, ok := cm.Cycle(date); ok {
			key := schedule.Route{Weekday: schedule.ISOWeekday(date), CycleWeek: cycle}
			if i, ok := routeIndex[key]; ok {
				cell.Route = i
			}
		}
		month.Cells = append(month.Cells, cell)
	}
	return month
}

// RouteLabel describes a route in words
func RouteLabel(r schedule.Route) string {
	name := "?"
	if r.Weekday >= 1 && r.Weekday <= 7 {
		name = weekdayLong[r.Weekday]
	}
	return fmt.Sprintf("%s, cycle week %d", name, r.CycleWeek)
}

// Collection is one highlighted day
type Collection struct {
	Date    time.Time      `json:"date"`
	Route   schedule.Route `json:"route"`
	Label   string         `json:"label"`
	Streams []string       `json:"streams,omitempty"`
	Holiday string         `json:"holiday,omitempty"`
}

// Collections lists every highlighted day in date order
func (c *Calendar) Collections() []Collection {
	var out []Collection
	for _, m := range c.Months {
		for _, cell := range m.Cells {
			if !cell.Highlighted() {
				continue
			}
			le := c.Legend[cell.Route]
			out = append(out, Collection{
				Date:    cell.Date,
				Route:   le.Route,
				Label:   le.Label,
				Streams: le.Streams,
				Holiday: cell.Holiday,
			})
		}
	}
	return out
}

// StreamLabel joins a collection's waste streams, or falls back to its route label
func (c Collection) StreamLabel() string {
	if len(c.Streams) == 0 {
		return c.Label
	}
	return strings.Join(c.Streams, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
