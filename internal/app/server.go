package app

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
	"github.com/klabast/wb-services/tomme-kalender/internal/property"
	"github.com/klabast/wb-services/tomme-kalender/internal/render"
	"github.com/klabast/wb-services/tomme-kalender/internal/resolver"
	"github.com/klabast/wb-services/tomme-kalender/internal/schedule"
)

// Server answers address lookups against the currently loaded dataset
type Server struct {
	cfg      *Config
	source   property.Source
	cache    RenderCache
	resolver *resolver.Resolver
	cycles   *schedule.CycleCache
	dataset  atomic.Pointer[resolver.Dataset]
}

// NewServer creates a Server. Call Reload before serving requests.
func NewServer(cfg *Config, source property.Source, cache RenderCache) *Server {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Server{
		cfg:      cfg,
		source:   source,
		cache:    cache,
		resolver: resolver.New(cfg.MatchLimit, cfg.MatchThreshold),
		cycles:   schedule.NewCycleCache(),
	}
}

// Dataset returns the active dataset snapshot, or nil before the first load
func (s *Server) Dataset() *resolver.Dataset {
	return s.dataset.Load()
}

// SetDataset replaces the active dataset
func (s *Server) SetDataset(ds *resolver.Dataset) {
	s.dataset.Store(ds)
	DatasetRecords.Set(float64(ds.Len()))
}

// Lookup resolves query for year and, if any schedule was found, lays out
// the year's calendar.
func (s *Server) Lookup(query string, year int) (*Lookup, error) {
	ds := s.Dataset()
	res, err := s.resolver.Resolve(ds, query, year)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{"query": query, "year": year})
	for _, w := range res.Warnings {
		log.WithField("routeCode", w.Record.RouteCode).Warn(w.Error)
	}
	RouteDecodeWarnings.Add(float64(len(res.Warnings)))

	lookup := &Lookup{Resolution: res}
	if ds != nil {
		lookup.Fingerprint = ds.Fingerprint()
	}
	switch {
	case !res.Matched:
		LookupsTotal.WithLabelValues(OutcomeUnmatched).Inc()
		log.WithField("suggestions", len(res.Suggestions)).Info("No confident match")
		return lookup, nil
	case len(res.Schedules) == 0:
		LookupsTotal.WithLabelValues(OutcomeInvalidRoutes).Inc()
		log.WithField("matched", res.MatchedName).Warn("Matched property has no valid route codes")
		return lookup, nil
	}
	LookupsTotal.WithLabelValues(OutcomeMatched).Inc()

	cm, err := s.cycles.Get(year)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cal, err := render.Render(res.Schedules, cm, year, render.Options{
		Title:    fmt.Sprintf("%s, %d", res.MatchedName, year),
		Holidays: GetNorwegianHolidays(year),
	})
	if err != nil {
		return nil, err
	}
	RenderDuration.Observe(time.Since(start).Seconds())

	lookup.Calendar = cal
	log.WithFields(logrus.Fields{
		"matched":   res.MatchedName,
		"score":     res.Score,
		"schedules": len(res.Schedules),
	}).Info("Lookup resolved")
	return lookup, nil
}

// Routes returns the HTTP handler for the API
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.GetConfig)
	mux.HandleFunc("/api/lookup", s.HandleLookup)
	mux.HandleFunc("/api/calendar.png", s.HandleCalendarPNG)
	mux.HandleFunc("/api/download", s.HandleDownload)
	mux.HandleFunc("/api/subscribe", s.HandleSubscribe)
	mux.HandleFunc("/api/holidays", s.HandleHolidays)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
