// Package services – RateLimiter
//
// RateLimiter enforces the fixed per-client window on anonymous wish
// generation. Counters live in the row store so every instance sees the
// same state. Each decision is a read followed by a compare-and-swap on the
// row's version column; a lost race re-reads and re-decides, so two
// concurrent requests can never both take the last slot.
//
// Store failures fail closed with ErrLimiterUnavailable.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/observability"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

const defaultCASRetries = 8

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed      bool
	Remaining    int
	ResetAt      time.Time
	RequestCount int
}

// RateLimiter admits at most Max requests per client per Window.
type RateLimiter struct {
	DB      *gorm.DB
	Max     int
	Window  time.Duration
	Timeout time.Duration // per store call; 0 disables
	Retries int           // CAS attempts before giving up
}

func NewRateLimiter(db *gorm.DB, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{DB: db, Max: max, Window: window, Retries: defaultCASRetries}
}

// CheckAndIncrement admits or denies one request from clientID at now.
// A denied request does not touch the stored counter.
func (l *RateLimiter) CheckAndIncrement(ctx context.Context, clientID string, now time.Time) (Decision, error) {
	tr := otel.Tracer("services/RateLimiter")
	ctx, span := tr.Start(ctx, "CheckAndIncrement", trace.WithAttributes(attribute.Int("limit.max", l.Max)))
	defer span.End()

	ctx, cancel := boundStore(ctx, l.Timeout)
	defer cancel()

	now = now.UTC()
	retries := l.Retries
	if retries <= 0 {
		retries = defaultCASRetries
	}

	for attempt := 0; attempt < retries; attempt++ {
		cur, err := repo.GetCounter(ctx, l.DB, clientID)
		if errors.Is(err, repo.ErrNotFound) {
			if l.Max < 1 {
				return l.deny(now, 0), nil
			}
			created, err := repo.InsertCounter(ctx, l.DB, &domain.RateLimitCounter{
				ClientID:        clientID,
				RequestCount:    1,
				WindowStart:     now,
				LastRequestTime: now,
			})
			if err != nil {
				return Decision{}, l.unavailable(err)
			}
			if created {
				observability.RateLimitDecisions.WithLabelValues("allowed").Inc()
				return Decision{Allowed: true, Remaining: l.Max - 1, ResetAt: now.Add(l.Window), RequestCount: 1}, nil
			}
			// Another request created the row first; decide against it.
			continue
		}
		if err != nil {
			return Decision{}, l.unavailable(err)
		}

		next := *cur
		if _, _, inside := clock.WindowBounds(cur.WindowStart, now, l.Window); !inside {
			next.WindowStart = now
			next.RequestCount = 0
		}
		if next.RequestCount >= l.Max {
			return l.deny(next.WindowStart, next.RequestCount), nil
		}
		next.RequestCount++
		next.LastRequestTime = now

		ok, err := repo.SwapCounter(ctx, l.DB, &next, cur.Version)
		if err != nil {
			return Decision{}, l.unavailable(err)
		}
		if !ok {
			observability.RateLimitConflicts.Inc()
			continue
		}
		span.SetAttributes(attribute.Int("limit.count", next.RequestCount))
		observability.RateLimitDecisions.WithLabelValues("allowed").Inc()
		return Decision{
			Allowed:      true,
			Remaining:    l.Max - next.RequestCount,
			ResetAt:      next.WindowStart.Add(l.Window),
			RequestCount: next.RequestCount,
		}, nil
	}
	return Decision{}, l.unavailable(fmt.Errorf("counter contention for %d attempts", retries))
}

func (l *RateLimiter) deny(windowStart time.Time, count int) Decision {
	observability.RateLimitDecisions.WithLabelValues("denied").Inc()
	return Decision{Allowed: false, Remaining: 0, ResetAt: windowStart.Add(l.Window), RequestCount: count}
}

func (l *RateLimiter) unavailable(err error) error {
	observability.RateLimitDecisions.WithLabelValues("unavailable").Inc()
	return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
}

// Peek reports the state a request at now would see, without writing.
// An expired window is reported as fresh (full allowance, reset one window
// from now).
func (l *RateLimiter) Peek(ctx context.Context, clientID string, now time.Time) (Decision, error) {
	ctx, cancel := boundStore(ctx, l.Timeout)
	defer cancel()

	now = now.UTC()
	cur, err := repo.GetCounter(ctx, l.DB, clientID)
	if errors.Is(err, repo.ErrNotFound) {
		return Decision{Allowed: l.Max > 0, Remaining: l.Max, ResetAt: now.Add(l.Window)}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	_, end, inside := clock.WindowBounds(cur.WindowStart, now, l.Window)
	if !inside {
		return Decision{Allowed: l.Max > 0, Remaining: l.Max, ResetAt: now.Add(l.Window)}, nil
	}
	remaining := l.Max - cur.RequestCount
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: remaining > 0, Remaining: remaining, ResetAt: end, RequestCount: cur.RequestCount}, nil
}

// PruneStale deletes counters idle for longer than olderThan. Pruning only
// removes rows whose window has long expired, so it never changes a
// decision.
func (l *RateLimiter) PruneStale(ctx context.Context, now time.Time, olderThan time.Duration) (int64, error) {
	if olderThan < l.Window {
		olderThan = l.Window
	}
	n, err := repo.PruneCounters(ctx, l.DB, now.UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	observability.RateLimitPruned.Add(float64(n))
	return n, nil
}
