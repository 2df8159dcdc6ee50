package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
)

const reloadTimeout = 1 * time.Minute

// StartReloader schedules Reload on the given cron spec (standard 5-field
// syntax) and starts the scheduler. Stop the returned cron on shutdown.
func (s *Server) StartReloader(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.Local))

	_, err := c.AddFunc(spec, func() {
		logger.Log.Info("Scheduled dataset reload triggered")
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()

		if err := s.Reload(ctx); err != nil {
			logger.Log.WithError(err).Error("Dataset reload failed, keeping previous dataset")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	c.Start()
	logger.Log.WithField("schedule", spec).Info("Dataset reloader started")
	return c, nil
}
