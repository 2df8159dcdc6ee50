package schedule

import "fmt"

// InvalidRouteCodeError reports a route code that cannot be decoded
type InvalidRouteCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidRouteCodeError) Error() string {
	return fmt.Sprintf("invalid route code %q: %s", e.Code, e.Reason)
}

// UnsupportedYearError reports a year outside MinYear..MaxYear
type UnsupportedYearError struct {
	Year int
}

func (e *UnsupportedYearError) Error() string {
	return fmt.Sprintf("unsupported year %d (supported: %d-%d)", e.Year, MinYear, MaxYear)
}
