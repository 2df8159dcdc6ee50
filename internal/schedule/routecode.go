package schedule

import (
	"strings"
	"time"
)

// RouteCodeLength is the length of a padded route code
const RouteCodeLength = 5

const (
	weekdayIndex = 3
	cycleIndex   = 4
)

// Route is a decoded route code: the ISO weekday (1=Monday..7=Sunday)
// and the cycle week (1..4) the collection happens on.
type Route struct {
	Weekday   int `json:"weekday"`
	CycleWeek int `json:"cycleWeek"`
}

// Decode pads code to five digits and extracts weekday and cycle week
func Decode(code string) (Route, error) {
	padded := PadRouteCode(code)
	if len(padded) > RouteCodeLength {
		return Route{}, &InvalidRouteCodeError{Code: code, Reason: "longer than 5 characters"}
	}
	for _, c := range padded {
		if c < '0' || c > '9' {
			return Route{}, &InvalidRouteCodeError{Code: code, Reason: "not numeric"}
		}
	}

	r := Route{
		Weekday:   int(padded[weekdayIndex] - '0'),
		CycleWeek: int(padded[cycleIndex] - '0'),
	}
	if r.Weekday < 1 || r.Weekday > 7 {
		return Route{}, &InvalidRouteCodeError{Code: code, Reason: "weekday digit out of range 1-7"}
	}
	if r.CycleWeek < 1 || r.CycleWeek > CycleLength {
		return Route{}, &InvalidRouteCodeError{Code: code, Reason: "cycle week digit out of range 1-4"}
	}
	return r, nil
}

// PadRouteCode trims whitespace and left-pads code with zeros to RouteCodeLength
func PadRouteCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) >= RouteCodeLength {
		return code
	}
	return strings.Repeat("0", RouteCodeLength-len(code)) + code
}

// ISOWeekday returns the ISO weekday number of t (1=Monday..7=Sunday)
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Matches reports whether the route collects on date according to cm
func (r Route) Matches(date time.Time, cm *CycleMap) bool {
	cycle, ok := cm.Cycle(date)
	return ok && cycle == r.CycleWeek && ISOWeekday(date) == r.Weekday
}
