package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
	"github.com/klabast/wb-services/tomme-kalender/internal/property"
	"github.com/klabast/wb-services/tomme-kalender/internal/resolver"
)

// NewSource picks the record source from cfg: PostgreSQL when DATABASE_URL
// is set, the CSV file otherwise. The returned close function releases the
// database connection, if any.
func NewSource(cfg *Config) (property.Source, func() error, error) {
	if cfg.DatabaseURL != "" {
		db, err := property.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return property.NewPostgresSource(db), db.Close, nil
	}

	return &property.CSVSource{
		Path:         cfg.DataFile,
		Delimiter:    cfg.Delimiter(),
		Encoding:     cfg.DataEncoding,
		NameColumn:   cfg.NameColumn,
		RouteColumn:  cfg.RouteColumn,
		StreamColumn: cfg.StreamColumn,
	}, func() error { return nil }, nil
}

// LoadDataset reads all records from src and indexes them
func LoadDataset(ctx context.Context, src property.Source) (*resolver.Dataset, error) {
	start := time.Now()
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	ds := resolver.NewDataset(records)
	logger.Log.WithFields(logrus.Fields{
		"records":     ds.Len(),
		"properties":  ds.Properties(),
		"fingerprint": ds.Fingerprint()[:16],
		"duration":    time.Since(start).String(),
	}).Info("Dataset loaded")
	return ds, nil
}

// Reload loads a fresh dataset and swaps it in. On failure the previous
// dataset stays active.
func (s *Server) Reload(ctx context.Context) error {
	ds, err := LoadDataset(ctx, s.source)
	if err != nil {
		return err
	}

	if prev := s.dataset.Swap(ds); prev != nil && prev.Fingerprint() == ds.Fingerprint() {
		logger.Log.Debug("Dataset unchanged after reload")
	}
	DatasetRecords.Set(float64(ds.Len()))
	return nil
}
