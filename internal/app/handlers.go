package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
	"github.com/klabast/wb-services/tomme-kalender/internal/render"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

const cacheTimeout = 2 * time.Second

// GetConfig returns the lookup defaults and dataset summary
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	palette := make([]string, len(render.Palette))
	for i, c := range render.Palette {
		palette[i] = render.Hex(c)
	}

	config := map[string]interface{}{
		"defaultYear": s.cfg.DefaultYear,
		"minYear":     schedule.MinYear,
		"maxYear":     schedule.MaxYear,
		"threshold":   s.cfg.MatchThreshold,
		"limit":       s.cfg.MatchLimit,
		"palette":     palette,
	}
	if ds := s.Dataset(); ds != nil {
		config["records"] = ds.Len()
		config["properties"] = ds.Properties()
		config["fingerprint"] = ds.Fingerprint()
	}
	writeJSON(w, http.StatusOK, config)
}

// lookupRequest parses address and year and runs the lookup, writing an
// error response and returning nil if that fails.
func (s *Server) lookupRequest(w http.ResponseWriter, r *http.Request) *Lookup {
	if !RequireMethod(w, r, http.MethodGet) {
		return nil
	}
	if s.Dataset() == nil {
		http.Error(w, ErrDatasetNotLoaded, http.StatusServiceUnavailable)
		return nil
	}
	address, ok := requireAddress(w, r)
	if !ok {
		return nil
	}
	year, ok := parseYear(w, r, s.cfg.DefaultYear)
	if !ok {
		return nil
	}

	lookup, err := s.Lookup(address, year)
	if err != nil {
		var yErr *schedule.UnsupportedYearError
		if errors.As(err, &yErr) {
			http.Error(w, ErrUnsupportedYear, http.StatusBadRequest)
			return nil
		}
		logger.Log.WithError(err).Error("Lookup failed")
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return nil
	}
	return lookup
}

// HandleLookup resolves an address and returns matched schedules or suggestions.
// An unmatched address is a normal 200 response carrying suggestions.
// Query params: address, year (optional)
func (s *Server) HandleLookup(w http.ResponseWriter, r *http.Request) {
	lookup := s.lookupRequest(w, r)
	if lookup == nil {
		return
	}
	writeJSON(w, http.StatusOK, NewLookupResponse(lookup))
}

// HandleCalendarPNG returns the rendered year calendar as a PNG image.
// Responds 404 with the JSON resolution when nothing could be resolved.
func (s *Server) HandleCalendarPNG(w http.ResponseWriter, r *http.Request) {
	lookup := s.lookupRequest(w, r)
	if lookup == nil {
		return
	}
	if !lookup.Found() {
		writeJSON(w, http.StatusNotFound, NewLookupResponse(lookup))
		return
	}

	key := RenderCacheKey(lookup.Fingerprint, lookup.Year, lookup.MatchedName)
	etag := ETag(key)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cacheTimeout)
	defer cancel()

	data, hit, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		RenderCacheTotal.WithLabelValues("error").Inc()
		logger.Log.WithError(err).Warn("Render cache unavailable")
	case hit:
		RenderCacheTotal.WithLabelValues("hit").Inc()
	default:
		RenderCacheTotal.WithLabelValues("miss").Inc()
	}

	if !hit {
		var buf bytes.Buffer
		if err := render.WritePNG(&buf, lookup.Calendar); err != nil {
			logger.Log.WithError(err).Error("Error rendering calendar")
			http.Error(w, ErrInternalServer, http.StatusInternalServerError)
			return
		}
		data = buf.Bytes()
		if err := s.cache.Set(ctx, key, data); err != nil {
			logger.Log.WithError(err).Warn("Could not store rendered calendar")
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("ETag", etag)
	if _, err := w.Write(data); err != nil {
		logger.Log.WithError(err).Error("Error writing calendar image")
	}
}

// HandleDownload exports the collection dates in ICS, CSV or JSON format
// Query params: address, year (optional), format
func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "ics" && format != "csv" && format != "json" {
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	lookup := s.lookupRequest(w, r)
	if lookup == nil {
		return
	}
	if !lookup.Found() {
		writeJSON(w, http.StatusNotFound, NewLookupResponse(lookup))
		return
	}

	collections := lookup.Calendar.Collections()
	switch format {
	case "ics":
		GenerateICS(w, r, lookup.MatchedName, lookup.Year, collections)
	case "csv":
		GenerateCSV(w, lookup.MatchedName, lookup.Year, collections)
	case "json":
		GenerateJSON(w, lookup.MatchedName, lookup.Year, collections)
	}
}

// HandleSubscribe returns an ICS feed for the current and the next year.
// Each year is resolved on its own.
// Query param: address
func (s *Server) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.Dataset() == nil {
		http.Error(w, ErrDatasetNotLoaded, http.StatusServiceUnavailable)
		return
	}
	address, ok := requireAddress(w, r)
	if !ok {
		return
	}

	currentYear := time.Now().Year()
	var collections []render.Collection
	var matchedName string
	for _, year := range []int{currentYear, currentYear + 1} {
		lookup, err := s.Lookup(address, year)
		if err != nil {
			logger.Log.WithError(err).Error("Subscription lookup failed")
			http.Error(w, ErrFailedToGenerateICS, http.StatusInternalServerError)
			return
		}
		if !lookup.Found() {
			writeJSON(w, http.StatusNotFound, NewLookupResponse(lookup))
			return
		}
		matchedName = lookup.MatchedName
		collections = append(collections, lookup.Calendar.Collections()...)
	}

	GenerateSubscriptionICS(w, r, matchedName, collections)
}

// HandleHolidays returns the public holidays of a year
// Query param: year (optional, defaults to the configured year)
func (s *Server) HandleHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r, s.cfg.DefaultYear)
	if !ok {
		return
	}
	if err := schedule.ValidateYear(year); err != nil {
		http.Error(w, ErrUnsupportedYear, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"holidays": GetNorwegianHolidays(year),
	})
}

// HandleHealth reports whether a dataset is loaded
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.Dataset()
	if ds == nil {
		http.Error(w, ErrDatasetNotLoaded, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok %d records\n", ds.Len())
}
