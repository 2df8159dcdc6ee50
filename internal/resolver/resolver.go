// Package resolver turns a free-text address query into the collection
// schedules of the matching property.
package resolver

import (
	"errors"

	"github.com/klabast/wb-services/tomme-kalender/internal/matcher"
	"github.com/klabast/wb-services/tomme-kalender/internal/property"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

// Reasons attached to a Resolution that has no schedules
const (
	ReasonEmptyDataset  = "dataset is empty"
	ReasonNoMatch       = "no property matched confidently"
	ReasonNoValidRoutes = "matched property has no valid route codes"
)

// Schedule is one decoded route of a matched property
type Schedule struct {
	Record    property.Record `json:"record"`
	Weekday   int             `json:"weekday"`
	CycleWeek int             `json:"cycleWeek"`
}

// Route returns the weekday/cycle pair of s
func (s Schedule) Route() schedule.Route {
	return schedule.Route{Weekday: s.Weekday, CycleWeek: s.CycleWeek}
}

// Warning reports a record of the matched property whose route code failed to decode
type Warning struct {
	Record property.Record `json:"record"`
	Error  string          `json:"error"`
}

// Resolution is the outcome of one query
type Resolution struct {
	Query       string              `json:"query"`
	Year        int                 `json:"year"`
	Matched     bool                `json:"matched"`
	MatchedName string              `json:"matchedName,omitempty"`
	Score       int                 `json:"score,omitempty"`
	Schedules   []Schedule          `json:"schedules"`
	Suggestions []matcher.Candidate `json:"suggestions,omitempty"`
	Warnings    []Warning           `json:"warnings,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

// Resolver holds the matching policy
type Resolver struct {
	Limit     int
	Threshold int
}

// New creates a Resolver with the given suggestion limit and acceptance threshold
func New(limit, threshold int) *Resolver {
	return &Resolver{Limit: limit, Threshold: threshold}
}

// Resolve matches query against ds and decodes the matched property's route
// codes. Only an unsupported year is an error; a miss is reported through
// Suggestions and a failing route code through Warnings.
func (r *Resolver) Resolve(ds *Dataset, query string, year int) (*Resolution, error) {
	if err := schedule.ValidateYear(year); err != nil {
		return nil, err
	}

	res := &Resolution{Query: query, Year: year, Schedules: []Schedule{}}
	if ds == nil || ds.Len() == 0 {
		res.Reason = ReasonEmptyDataset
		return res, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = matcher.DefaultLimit
	}
	cands := ds.index.Match(query, limit)

	top, ok := matcher.Accept(cands, r.Threshold)
	if !ok {
		res.Suggestions = cands
		res.Reason = ReasonNoMatch
		return res, nil
	}

	res.Matched = true
	res.MatchedName = top.Record.Name
	res.Score = top.Score

	for _, rec := range ds.index.Records(top.Name) {
		route, err := schedule.Decode(rec.RouteCode)
		if err != nil {
			var rcErr *schedule.InvalidRouteCodeError
			if !errors.As(err, &rcErr) {
				return nil, err
			}
			res.Warnings = append(res.Warnings, Warning{Record: rec, Error: err.Error()})
			continue
		}
		res.Schedules = append(res.Schedules, Schedule{
			Record:    rec,
			Weekday:   route.Weekday,
			CycleWeek: route.CycleWeek,
		})
	}

	if len(res.Schedules) == 0 {
		res.Reason = ReasonNoValidRoutes
	}
	return res, nil
}
