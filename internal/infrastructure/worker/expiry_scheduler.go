package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer expires sent offers whose expiry date has passed.
type Expirer interface {
	ExpireSentRecords(ctx context.Context, now time.Time) (int, error)
}

// ExpiryScheduler runs the offer expiry sweep on a cron schedule.
type ExpiryScheduler struct {
	schedule string
	expirer  Expirer
	logger   *zap.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	ctx       context.Context
	isRunning bool
}

// NewExpiryScheduler creates a scheduler with a standard cron schedule
// expression, e.g. "0 * * * *" for hourly.
func NewExpiryScheduler(schedule string, expirer Expirer, logger *zap.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		schedule: schedule,
		expirer:  expirer,
		logger:   logger,
	}
}

// Name implements Worker
func (s *ExpiryScheduler) Name() string { return "expiry_scheduler" }

// Start registers the sweep job and starts the cron runner. The sweep
// also runs once immediately so offers expired while the service was
// down are caught at startup.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("expiry scheduler already running")
	}

	s.ctx = ctx
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("ExpiryScheduler started", zap.String("schedule", s.schedule))

	go s.sweep()
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish
func (s *ExpiryScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	<-s.cron.Stop().Done()
	s.logger.Info("ExpiryScheduler stopped")
	return nil
}

func (s *ExpiryScheduler) sweep() {
	if err := s.ctx.Err(); err != nil {
		return
	}

	expired, err := s.expirer.ExpireSentRecords(s.ctx, time.Now())
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Expiry sweep completed", zap.Int("expired", expired))
	}
}
