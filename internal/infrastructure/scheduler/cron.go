package scheduler

import (
	"context"
	"time"

	"scholartrack/internal/ports"
)

// TickScheduler drives recurring runs aligned to local midnight: the daily
// job fires once per calendar day, the monthly job additionally fires on the
// first day of the month in the configured location. External cron remains
// the expected production trigger; this keeps long-lived deployments
// self-sufficient.
type TickScheduler struct {
	loc  *time.Location
	stop chan struct{}
}

var _ ports.Scheduler = (*TickScheduler)(nil)

// NewTickScheduler builds a scheduler anchored to the given location.
func NewTickScheduler(loc *time.Location) *TickScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &TickScheduler{loc: loc}
}

// Start begins the midnight loop; the daily job runs immediately on start.
// Each iteration re-computes the next local midnight, so DST shifts never
// accumulate drift and the day-1 monthly fire stays on the calendar boundary.
func (s *TickScheduler) Start(ctx context.Context, daily func(time.Time), monthly func(time.Time)) error {
	if daily == nil && monthly == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		s.fire(time.Now(), daily, monthly)
		for {
			timer := time.NewTimer(time.Until(nextMidnight(time.Now(), s.loc)))
			select {
			case t := <-timer.C:
				s.fire(t, daily, monthly)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// nextMidnight returns the first instant of the calendar day after now in loc.
// time.Date normalizes December rollover and DST-skipped times.
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

func (s *TickScheduler) fire(t time.Time, daily, monthly func(time.Time)) {
	local := t.In(s.loc)
	if daily != nil {
		daily(local)
	}
	if monthly != nil && local.Day() == 1 {
		monthly(local)
	}
}

// Stop halts the scheduling goroutine.
func (s *TickScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
