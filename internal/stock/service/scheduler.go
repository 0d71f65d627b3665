package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/labstock/labstock-backend/pkg/logger"
)

const scanTimeout = 2 * time.Minute

// ExpiryScheduler runs the expiry scan on a cron schedule
type ExpiryScheduler struct {
	expiration *ExpirationService
	schedule   string
	cron       *cron.Cron
	logger     *logger.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewExpiryScheduler creates a scheduler for the standard five-field cron schedule
func NewExpiryScheduler(expiration *ExpirationService, schedule string, log *logger.Logger) *ExpiryScheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &ExpiryScheduler{
		expiration: expiration,
		schedule:   schedule,
		cron:       cron.New(),
		logger:     log.WithComponent("expiry-scheduler"),
	}
}

// Start registers the scan and starts the cron runner. Scans stop when ctx is done.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info().Str("schedule", s.schedule).Msg("expiry scheduler started")
	return nil
}

// Stop stops the runner and waits for a running scan to finish
func (s *ExpiryScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("expiry scheduler stopped")
}

// RunOnce runs one scan immediately
func (s *ExpiryScheduler) RunOnce(ctx context.Context) (*ScanReport, error) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()
	return s.expiration.Scan(ctx)
}

func (s *ExpiryScheduler) run() {
	start := time.Now()
	if _, err := s.RunOnce(s.ctx); err != nil {
		s.logger.Error().Err(err).Msg("expiry scan failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("expiry scan cycle completed")
}
