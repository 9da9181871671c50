package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Sweeper reclaims drafts that have not been updated within maxAge.
type Sweeper struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
	cron   *cron.Cron
}

// NewSweeper constructs a Sweeper. A non-positive maxAge disables sweeping.
func NewSweeper(store Store, maxAge time.Duration) *Sweeper {
	return &Sweeper{store: store, maxAge: maxAge, now: time.Now}
}

// RunOnce removes expired drafts and returns how many were deleted.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}
	removed, err := s.store.Sweep(ctx, s.now().Add(-s.maxAge))
	if removed > 0 {
		metrics.DraftsSwept.Add(float64(removed))
	}
	return removed, err
}

// Start schedules RunOnce with a cron expression such as "@hourly".
func (s *Sweeper) Start(schedule string) error {
	if s.maxAge <= 0 {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		removed, err := s.RunOnce(context.Background())
		if err != nil {
			logger.Errorf("[drafts] sweep failed: %v", err)
			return
		}
		if removed > 0 {
			logger.Infof("[drafts] swept %d abandoned draft(s)", removed)
		}
	}); err != nil {
		return fmt.Errorf("schedule draft sweep %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
