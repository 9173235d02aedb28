// Package jobs runs periodic maintenance on the appointment book.
package jobs

import (
	"context"
	"fmt"
	"time"

	"healthcare-app-server/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StaleCanceller cancels pending appointments whose start time has passed.
type StaleCanceller interface {
	CancelStalePending(ctx context.Context) (int, error)
}

// Sweeper runs a StaleCanceller on a cron schedule.
type Sweeper struct {
	cron     *cron.Cron
	target   StaleCanceller
	log      *logrus.Entry
	timeout  time.Duration
	schedule string
}

// NewSweeper creates a Sweeper for the standard five-field cron schedule,
// evaluated in loc.
func NewSweeper(schedule string, loc *time.Location, target StaleCanceller, log *logger.Logger) (*Sweeper, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Sweeper{
		cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:   target,
		log:      log.WithComponent("sweeper"),
		timeout:  time.Minute,
		schedule: schedule,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cancelled, err := s.target.CancelStalePending(ctx)
	if err != nil {
		s.log.WithError(err).WithField("cancelled", cancelled).Error("Stale appointment sweep failed")
		return
	}
	if cancelled > 0 {
		s.log.WithField("cancelled", cancelled).Info("Cancelled stale pending appointments")
	}
}

// Start begins running sweeps in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.WithField("schedule", s.schedule).Info("Stale appointment sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish or ctx
// to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Sweeper did not stop before shutdown deadline")
	}
}
