// Package services – Dispatcher
//
// Dispatcher runs the daily celebration job. For every due record it
// generates a message, sends it to the group channel and appends a
// delivery-log row before moving on. A run can be repeated for the same
// date at any time: records with a successful row are skipped, so each
// record is delivered at most once per day.
//
// Before generating anything a worker claims the (record, date) pair in
// the dispatch_claims table. The claim is what keeps separate processes
// from sending the same celebration; the Locker only saves a store round
// trip inside one deployment. A claim is released once the outcome is
// logged. When a send succeeds but its row cannot be written the claim is
// kept, so reruns skip the record until ClaimTTL lapses.
//
// Per-record problems (generation, delivery, store errors around one
// record) never abort the run. Only failing to load the roster does.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/clock"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/messaging"
	"github.com/tbourn/go-celebrations-backend/internal/observability"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

// Per-record outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"

	// OutcomeDuplicate: the message went out but a success row for the
	// same record and date already existed.
	OutcomeDuplicate = "duplicate"
	// OutcomeUnlogged: the message went out but its success row could not
	// be written.
	OutcomeUnlogged = "unlogged"
)

const defaultClaimTTL = 10 * time.Minute

// RecordResult is the outcome for one due record.
type RecordResult struct {
	RosterRecordID uint   `json:"roster_record_id"`
	Name           string `json:"name"`
	Outcome        string `json:"outcome"`
	Reason         string `json:"reason,omitempty"`
	DeliveryID     string `json:"delivery_id,omitempty"`
	Service        string `json:"service,omitempty"`
}

// Summary reports one RunDaily call.
type Summary struct {
	Date       string         `json:"date"`
	Due        int            `json:"due"`
	Attempted  int            `json:"attempted"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	Duplicates int            `json:"duplicates"`
	Unlogged   int            `json:"unlogged"`
	Records    []RecordResult `json:"records"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Dispatcher sends each due celebration at most once per day.
type Dispatcher struct {
	DB                *gorm.DB
	Matcher           *CelebrationService
	Gen               Generator
	Sender            messaging.Sender
	Recipient         string
	Locker            Locker
	MaxAttemptsPerDay int
	SendTimeout       time.Duration
	TemplateFallback  bool
	Timeout           time.Duration // per store call; 0 disables
	ClaimTTL          time.Duration // how long a claim outlives a crashed worker
	Clock             clock.Clock

	// runMu keeps runs inside this process sequential.
	runMu sync.Mutex
}

func (d *Dispatcher) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock.Now()
}

func (d *Dispatcher) claimTTL() time.Duration {
	if d.ClaimTTL <= 0 {
		return defaultClaimTTL
	}
	return d.ClaimTTL
}

func (d *Dispatcher) locker() Locker {
	if d.Locker == nil {
		d.Locker = NewMemoryLocker()
	}
	return d.Locker
}

// RunDaily dispatches everything due on today's calendar date in the
// business timezone.
func (d *Dispatcher) RunDaily(ctx context.Context, today time.Time) (Summary, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	local := today.In(d.Matcher.Location)
	date := clock.DateKey(local)
	sum := Summary{Date: date, StartedAt: time.Now().UTC(), Records: []RecordResult{}}

	tr := otel.Tracer("services/Dispatcher")
	ctx, span := tr.Start(ctx, "RunDaily", trace.WithAttributes(attribute.String("date", date)))
	defer span.End()

	rctx, cancel := boundStore(ctx, d.Timeout)
	due, err := d.Matcher.DueToday(rctx, local)
	cancel()
	if err != nil {
		observability.DispatchRuns.WithLabelValues("error").Inc()
		sum.FinishedAt = time.Now().UTC()
		log.Error().Err(err).Str("sent_date", date).Msg("dispatch aborted: roster unavailable")
		return sum, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	sum.Due = len(due)

	owner := ulid.Make().String()
	for _, r := range due {
		res := d.dispatchOne(ctx, r, local, date, owner)
		sum.Records = append(sum.Records, res)
		observability.DispatchOutcomes.WithLabelValues(res.Outcome).Inc()
		switch res.Outcome {
		case OutcomeSucceeded:
			sum.Attempted++
			sum.Succeeded++
		case OutcomeFailed:
			sum.Attempted++
			sum.Failed++
		case OutcomeDuplicate:
			sum.Attempted++
			sum.Duplicates++
		case OutcomeUnlogged:
			sum.Attempted++
			sum.Unlogged++
		default:
			sum.Skipped++
		}
	}

	sum.FinishedAt = time.Now().UTC()
	span.SetAttributes(
		attribute.Int("due", sum.Due),
		attribute.Int("succeeded", sum.Succeeded),
		attribute.Int("failed", sum.Failed),
		attribute.Int("skipped", sum.Skipped),
		attribute.Int("duplicates", sum.Duplicates),
		attribute.Int("unlogged", sum.Unlogged),
	)
	observability.DispatchRuns.WithLabelValues("ok").Inc()
	log.Info().
		Str("sent_date", date).
		Int("due", sum.Due).
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Int("duplicates", sum.Duplicates).
		Int("unlogged", sum.Unlogged).
		Msg("daily dispatch finished")
	return sum, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, r domain.RosterRecord, today time.Time, date, owner string) RecordResult {
	res := RecordResult{RosterRecordID: r.ID, Name: r.Name}
	logger := log.With().Uint("roster_record_id", r.ID).Str("sent_date", date).Logger()

	skip := func(reason string) RecordResult {
		res.Outcome, res.Reason = OutcomeSkipped, reason
		logger.Debug().Str("reason", reason).Msg("dispatch skipped")
		return res
	}

	unlock, ok, err := d.locker().TryLock(ctx, fmt.Sprintf("dispatch:%d:%s", r.ID, date))
	if err != nil {
		logger.Warn().Err(err).Msg("dispatch lock unavailable")
		return skip("lock unavailable")
	}
	if !ok {
		return skip("in progress elsewhere")
	}
	defer unlock()

	cctx, cancel := boundStore(ctx, d.Timeout)
	claimed, err := repo.ClaimDispatch(cctx, d.DB, r.ID, date, owner, d.now(), d.claimTTL())
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("dispatch claim failed")
		return skip("claim failed")
	}
	if !claimed {
		return skip("in progress elsewhere")
	}
	keepClaim := false
	defer func() {
		if keepClaim {
			return
		}
		rctx, cancel := boundStore(context.WithoutCancel(ctx), d.Timeout)
		defer cancel()
		if err := repo.ReleaseDispatch(rctx, d.DB, r.ID, date, owner); err != nil {
			logger.Warn().Err(err).Msg("dispatch claim release failed")
		}
	}()

	// Idempotency checks fail closed: any store error skips the record.
	qctx, cancel := boundStore(ctx, d.Timeout)
	done, err := repo.HasSuccessfulDelivery(qctx, d.DB, r.ID, date)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("delivery check failed")
		return skip("delivery check failed")
	}
	if done {
		return skip("already delivered")
	}
	if d.MaxAttemptsPerDay > 0 {
		qctx, cancel := boundStore(ctx, d.Timeout)
		failed, err := repo.CountFailedDeliveries(qctx, d.DB, r.ID, date)
		cancel()
		if err != nil {
			logger.Error().Err(err).Msg("attempt count failed")
			return skip("delivery check failed")
		}
		if failed >= int64(d.MaxAttemptsPerDay) {
			return skip("attempt limit reached")
		}
	}

	c := d.Matcher.Describe(r, today)
	var fallback func() string
	if d.TemplateFallback {
		fallback = func() string { return CelebrationTemplate(c) }
	}
	text, service, err := d.Gen.Generate(ctx, CelebrationMessages(c), fallback)
	if err != nil {
		return d.fail(ctx, res, r, date, "", fmt.Errorf("generation: %w", err))
	}
	res.Service = service

	sctx, cancel := boundStore(ctx, d.SendTimeout)
	deliveryID, err := d.Sender.Send(sctx, d.Recipient, text)
	cancel()
	if err != nil {
		return d.fail(ctx, res, r, date, text, err)
	}
	res.DeliveryID = deliveryID

	// From here on the message is out; the row write must not be cut short
	// by the caller giving up.
	wctx := context.WithoutCancel(ctx)
	entry := &domain.DeliveryLogEntry{
		RosterRecordID: r.ID,
		MessageContent: text,
		SentDate:       date,
		Success:        true,
		DeliveryID:     &deliveryID,
	}
	err = d.logDelivery(wctx, entry)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		logger.Warn().Err(err).Str("delivery_id", deliveryID).Msg("delivery log write failed, retrying once")
		entry.ID = 0
		err = d.logDelivery(wctx, entry)
	}
	switch {
	case err == nil:
		res.Outcome = OutcomeSucceeded
		logger.Info().Str("delivery_id", deliveryID).Str("service", service).Msg("celebration delivered")
	case errors.Is(err, repo.ErrDuplicate):
		observability.DispatchAnomalies.WithLabelValues(OutcomeDuplicate).Inc()
		res.Outcome, res.Reason = OutcomeDuplicate, "success already recorded by another run"
		logger.Error().Str("delivery_id", deliveryID).Msg("duplicate delivery: success already recorded by another run")
	default:
		keepClaim = true
		observability.DispatchAnomalies.WithLabelValues(OutcomeUnlogged).Inc()
		res.Outcome, res.Reason = OutcomeUnlogged, "delivery log write failed"
		logger.Error().Err(err).Str("delivery_id", deliveryID).Msg("delivery sent but log write failed")
	}
	return res
}

func (d *Dispatcher) logDelivery(ctx context.Context, entry *domain.DeliveryLogEntry) error {
	ctx, cancel := boundStore(ctx, d.Timeout)
	defer cancel()
	return repo.CreateDelivery(ctx, d.DB, entry)
}

func (d *Dispatcher) fail(ctx context.Context, res RecordResult, r domain.RosterRecord, date, text string, cause error) RecordResult {
	msg := cause.Error()
	entry := &domain.DeliveryLogEntry{
		RosterRecordID: r.ID,
		MessageContent: text,
		SentDate:       date,
		Success:        false,
		ErrorMessage:   &msg,
	}
	if err := d.logDelivery(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).Uint("roster_record_id", r.ID).Str("sent_date", date).Msg("failed to log delivery failure")
	}
	log.Warn().Err(cause).Uint("roster_record_id", r.ID).Str("sent_date", date).Msg("celebration delivery failed")
	res.Outcome, res.Reason = OutcomeFailed, msg
	return res
}

// Deliveries lists the delivery log for a calendar date.
func (d *Dispatcher) Deliveries(ctx context.Context, date string) ([]domain.DeliveryLogEntry, error) {
	ctx, cancel := boundStore(ctx, d.Timeout)
	defer cancel()
	return repo.ListDeliveries(ctx, d.DB, date)
}
