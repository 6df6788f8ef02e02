// Package handlers exposes the celebrations API over HTTP.
//
// Handlers are transport-thin: they validate input, resolve the caller,
// call application services and translate results and sentinel errors into
// HTTP responses. Services are consumed through the small interfaces below
// so tests can substitute fakes.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/http/middleware"
	"github.com/tbourn/go-celebrations-backend/internal/scheduler"
	"github.com/tbourn/go-celebrations-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// WishService generates, regenerates and replays wishes.
type WishService interface {
	Generate(ctx context.Context, req services.WishRequest, caller services.Caller, now time.Time, regenerating *string) (*services.WishResult, error)
	Regenerate(ctx context.Context, originalID, additionalContext string, caller services.Caller, now time.Time) (*services.WishResult, error)
	Replay(ctx context.Context, requestID string, caller services.Caller, now time.Time) (*services.WishResult, error)
	LimitStatus(ctx context.Context, caller services.Caller, now time.Time) (services.Decision, error)
}

// IdempotencyStore maps an Idempotency-Key to the wish it produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, clientID, key string, now time.Time) (string, error)
	Remember(ctx context.Context, clientID, key, requestID string) error
}

// CelebrationService answers roster and due-date questions.
type CelebrationService interface {
	Today(now time.Time) time.Time
	DueToday(ctx context.Context, today time.Time) ([]domain.RosterRecord, error)
	ForMonthDay(ctx context.Context, monthDay string) ([]domain.RosterRecord, error)
	ParseDay(v string) (time.Time, error)
	Describe(r domain.RosterRecord, today time.Time) services.Celebration
	Roster(ctx context.Context, activeOnly bool) ([]domain.RosterRecord, error)
	SetActive(ctx context.Context, id uint, active bool) error
}

// RosterImporter ingests CSV uploads.
type RosterImporter interface {
	ImportCSV(ctx context.Context, filename string, r io.Reader) (*services.ImportResult, error)
	Imports(ctx context.Context, limit int) ([]domain.RosterImport, error)
}

// Scheduler triggers dispatch runs and reports their state.
type Scheduler interface {
	RunNow(ctx context.Context, day time.Time) (services.Summary, error)
	Status() scheduler.Status
}

// DeliveryLog lists dispatch attempts for a date.
type DeliveryLog interface {
	Deliveries(ctx context.Context, date string) ([]domain.DeliveryLogEntry, error)
}

//
// Handler wiring
//

// Handlers groups every HTTP endpoint. Nil dependencies are allowed for
// tests that only exercise a subset of routes.
type Handlers struct {
	Wishes       WishService
	Idempotency  IdempotencyStore
	Celebrations CelebrationService
	Roster       RosterImporter
	Scheduler    Scheduler
	Deliveries   DeliveryLog
	// Ping reports row store reachability for /health.
	Ping  func(ctx context.Context) error
	Clock clock.Clock
}

func (h *Handlers) now() time.Time {
	if h.Clock == nil {
		return time.Now().UTC()
	}
	return h.Clock.Now()
}

// caller resolves who is asking from the auth middleware's context.
func caller(c *gin.Context) services.Caller {
	return services.Caller{
		ClientID:      middleware.ClientID(c),
		Authenticated: middleware.IsAuthenticated(c),
	}
}
