// Package services – CelebrationService
//
// CelebrationService answers "who is celebrating on this day?". Today is
// interpreted in the configured business timezone; the caller passes an
// instant and the service converts it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

type CelebrationService struct {
	DB       *gorm.DB
	Location *time.Location
}

func NewCelebrationService(db *gorm.DB, loc *time.Location) *CelebrationService {
	if loc == nil {
		loc = time.UTC
	}
	return &CelebrationService{DB: db, Location: loc}
}

// Today returns now's calendar date in the business timezone.
func (s *CelebrationService) Today(now time.Time) time.Time {
	return clock.StartOfDay(now, s.Location)
}

// DueToday returns the active records whose month-day matches today's
// date in the business timezone. Duplicates are returned as stored.
func (s *CelebrationService) DueToday(ctx context.Context, today time.Time) ([]domain.RosterRecord, error) {
	local := today.In(s.Location)
	tr := otel.Tracer("services/CelebrationService")
	ctx, span := tr.Start(ctx, "DueToday", trace.WithAttributes(attribute.String("date", clock.DateKey(local))))
	defer span.End()

	candidates, err := repo.ListActiveByMonthDay(ctx, s.DB, clock.MonthDay(local))
	if err != nil {
		return nil, err
	}
	out := candidates[:0]
	for _, r := range candidates {
		if clock.IsDueToday(r.EventDate, local) {
			out = append(out, r)
		}
	}
	span.SetAttributes(attribute.Int("due", len(out)))
	return out, nil
}

// ForMonthDay lists active records for an "MM-DD" string.
func (s *CelebrationService) ForMonthDay(ctx context.Context, monthDay string) ([]domain.RosterRecord, error) {
	m, d, err := clock.ParseMonthDay(monthDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, err)
	}
	return repo.ListActiveByMonthDay(ctx, s.DB, fmt.Sprintf("%02d-%02d", int(m), d))
}

// ParseDay parses a YYYY-MM-DD date in the business timezone.
func (s *CelebrationService) ParseDay(v string) (time.Time, error) {
	t, err := time.ParseInLocation(clock.DateLayout, strings.TrimSpace(v), s.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected YYYY-MM-DD", ErrInvalidDate)
	}
	return t, nil
}

// Describe attaches the age or years married for today.
func (s *CelebrationService) Describe(r domain.RosterRecord, today time.Time) Celebration {
	c := Celebration{Record: r}
	if r.Year != nil {
		c.AgeOrYears = clock.YearsSince(*r.Year, today.In(s.Location))
	}
	return c
}

// Roster lists all records, optionally only active ones.
func (s *CelebrationService) Roster(ctx context.Context, activeOnly bool) ([]domain.RosterRecord, error) {
	return repo.ListRoster(ctx, s.DB, activeOnly)
}

// SetActive soft-(de)activates a record.
func (s *CelebrationService) SetActive(ctx context.Context, id uint, active bool) error {
	if err := repo.SetRosterActive(ctx, s.DB, id, active); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	return nil
}
