package app

import (
	"github.com/klabast/wb-services/tomme-kalender/internal/render"
	"github.com/klabast/wb-services/tomme-kalender/internal/resolver"
)

// Lookup is a resolved query together with its rendered calendar.
// Calendar is nil when the query produced no schedules.
type Lookup struct {
	*resolver.Resolution
	Calendar *render.Calendar `json:"-"`
	// Fingerprint identifies the dataset snapshot the lookup ran against
	Fingerprint string `json:"-"`
}

// Found reports whether the lookup produced at least one schedule
func (l *Lookup) Found() bool {
	return l.Calendar != nil
}

// LookupResponse is the JSON body of /api/lookup
type LookupResponse struct {
	*resolver.Resolution
	Legend      []render.LegendEntry `json:"legend,omitempty"`
	Collections []render.Collection  `json:"collections,omitempty"`
}

// NewLookupResponse flattens l for JSON encoding
func NewLookupResponse(l *Lookup) LookupResponse {
	resp := LookupResponse{Resolution: l.Resolution}
	if l.Calendar != nil {
		resp.Legend = l.Calendar.Legend
		resp.Collections = l.Calendar.Collections()
	}
	return resp
}
