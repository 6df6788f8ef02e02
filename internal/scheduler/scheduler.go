// Package scheduler fires the daily celebration dispatch at a fixed local
// time of day and keeps the status reported by /api/v1/scheduler/status.
//
// The scheduler only decides *when* to run. Exactly-once delivery is the
// dispatcher's job, so a tick that overlaps a manual run, or a restart
// that re-runs the same day, is harmless.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/config"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

// Runner is the dispatch entry point; *services.Dispatcher implements it.
type Runner interface {
	RunDaily(ctx context.Context, today time.Time) (services.Summary, error)
}

// Housekeeper runs after every dispatch. Errors are logged only.
type Housekeeper func(ctx context.Context, now time.Time) error

// Status is the JSON view served by the status endpoint.
type Status struct {
	Enabled      bool              `json:"enabled"`
	Running      bool              `json:"running"`
	ScheduleTime string            `json:"schedule_time"`
	Timezone     string            `json:"timezone"`
	Now          time.Time         `json:"current_time"`
	NextRun      *time.Time        `json:"next_run,omitempty"`
	LastRunAt    *time.Time        `json:"last_run_at,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	LastSummary  *services.Summary `json:"last_summary,omitempty"`
}

type Scheduler struct {
	Runner      Runner
	Clock       clock.Clock
	Location    *time.Location
	Housekeeper Housekeeper
	Enabled     bool

	hour, minute int
	spec         string

	// after is replaced in tests.
	after func(time.Duration) <-chan time.Time

	mu        sync.Mutex
	running   bool
	lastRunAt time.Time
	lastErr   string
	last      *services.Summary
}

// New returns a scheduler firing at scheduleTime ("HH:MM") in loc.
func New(r Runner, c clock.Clock, loc *time.Location, scheduleTime string) (*Scheduler, error) {
	h, m, err := config.ParseScheduleTime(scheduleTime)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	if c == nil {
		c = clock.RealClock{}
	}
	return &Scheduler{
		Runner:   r,
		Clock:    c,
		Location: loc,
		Enabled:  true,
		hour:     h,
		minute:   m,
		spec:     fmt.Sprintf("%02d:%02d", h, m),
		after:    time.After,
	}, nil
}

// NextRun returns the first scheduled instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.Location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.Location)
	}
	return next
}

// Start blocks, firing RunNow at each scheduled time until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	log.Info().Str("schedule_time", s.spec).Str("timezone", s.Location.String()).Msg("scheduler started")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("scheduler stopped")
			return
		}
		now := s.Clock.Now()
		next := s.NextRun(now)
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-s.after(next.Sub(now)):
		}
		if _, err := s.RunNow(ctx, s.Clock.Now()); err != nil {
			log.Error().Err(err).Msg("scheduled dispatch failed")
		}
	}
}

// RunNow dispatches for day (interpreted in the business timezone), then
// runs the housekeeper. It records the outcome for Status.
func (s *Scheduler) RunNow(ctx context.Context, day time.Time) (services.Summary, error) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	sum, err := s.Runner.RunDaily(ctx, day.In(s.Location))

	s.mu.Lock()
	s.running = false
	s.lastRunAt = s.Clock.Now()
	s.lastErr = ""
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.last = &sum
	}
	s.mu.Unlock()

	if s.Housekeeper != nil {
		if herr := s.Housekeeper(ctx, s.Clock.Now()); herr != nil {
			log.Warn().Err(herr).Msg("post-dispatch housekeeping failed")
		}
	}
	return sum, err
}

// Status snapshots the scheduler state.
func (s *Scheduler) Status() Status {
	now := s.Clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Enabled:      s.Enabled,
		Running:      s.running,
		ScheduleTime: s.spec,
		Timezone:     s.Location.String(),
		Now:          now.In(s.Location),
		LastError:    s.lastErr,
		LastSummary:  s.last,
	}
	if s.Enabled {
		next := s.NextRun(now)
		st.NextRun = &next
	}
	if !s.lastRunAt.IsZero() {
		t := s.lastRunAt
		st.LastRunAt = &t
	}
	return st
}
