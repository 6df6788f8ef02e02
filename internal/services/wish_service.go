// Package services – WishService
//
// WishService turns a validated wish request into text. Anonymous callers
// pass through the persisted RateLimiter first; a denied request never
// reaches a provider and writes no audit row. Generation runs the
// configured provider chain and, when enabled, the local template. Every
// successful generation is appended to the audit trail; an audit failure
// is logged and counted but the caller still receives the wish.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-celebrations-backend/internal/ai"
	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/observability"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

// WishRequest is a validated POST /wish body.
type WishRequest struct {
	Name            string `json:"name"`
	AnniversaryType string `json:"anniversary_type"`
	Relationship    string `json:"relationship"`
	Tone            string `json:"tone"`
	Context         string `json:"context,omitempty"`
}

// Caller identifies who is asking. Authenticated callers bypass the limiter.
type Caller struct {
	ClientID      string
	Authenticated bool
}

// WishResult is returned by Generate. RemainingRequests and ResetAt are nil
// for authenticated callers.
type WishResult struct {
	Text              string
	RequestID         string
	OriginalRequestID *string
	Service           string
	RemainingRequests *int
	ResetAt           *time.Time
}

// Generator produces text from a conversation; *ai.Chain implements it.
type Generator interface {
	Generate(ctx context.Context, messages []ai.Message, fallback func() string) (text, service string, err error)
}

// Limiter is the admission contract WishService depends on.
type Limiter interface {
	CheckAndIncrement(ctx context.Context, clientID string, now time.Time) (Decision, error)
	Peek(ctx context.Context, clientID string, now time.Time) (Decision, error)
}

// Auditor is the audit contract WishService depends on.
type Auditor interface {
	Record(ctx context.Context, e AuditEntry, now time.Time) error
	Get(ctx context.Context, requestID string) (*domain.AuditLogEntry, error)
}

// WishService orchestrates admission, generation and auditing.
type WishService struct {
	Limiter          Limiter
	Audit            Auditor
	Gen              Generator
	TemplateFallback bool

	// MaxContextRunes caps the context after regeneration appends to it.
	MaxContextRunes int

	newID func() string
}

func NewWishService(l Limiter, a Auditor, g Generator, templateFallback bool) *WishService {
	return &WishService{
		Limiter:          l,
		Audit:            a,
		Gen:              g,
		TemplateFallback: templateFallback,
		MaxContextRunes:  500,
	}
}

func (s *WishService) requestID() string {
	if s.newID != nil {
		return s.newID()
	}
	return ulid.Make().String()
}

// Generate produces a wish for req on behalf of caller. When regenerating
// is non-nil the audit row links back to it.
func (s *WishService) Generate(ctx context.Context, req WishRequest, caller Caller, now time.Time, regenerating *string) (*WishResult, error) {
	tr := otel.Tracer("services/WishService")
	ctx, span := tr.Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("wish.type", req.AnniversaryType),
		attribute.Bool("caller.authenticated", caller.Authenticated),
	))
	defer span.End()

	res := &WishResult{OriginalRequestID: regenerating}

	if !caller.Authenticated {
		d, err := s.Limiter.CheckAndIncrement(ctx, caller.ClientID, now)
		if err != nil {
			span.SetStatus(codes.Error, "limiter unavailable")
			return nil, err
		}
		if !d.Allowed {
			span.SetAttributes(attribute.Bool("limit.denied", true))
			return nil, &RateLimitExceededError{ResetAt: d.ResetAt}
		}
		remaining, reset := d.Remaining, d.ResetAt
		res.RemainingRequests, res.ResetAt = &remaining, &reset
	}

	var fallback func() string
	if s.TemplateFallback {
		fallback = func() string { return WishTemplate(req) }
	}
	text, service, err := s.Gen.Generate(ctx, WishMessages(req), fallback)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	res.Text, res.Service = text, service
	res.RequestID = s.requestID()
	observability.WishesGenerated.WithLabelValues(service).Inc()

	entry := AuditEntry{
		RequestID:         res.RequestID,
		OriginalRequestID: regenerating,
		ClientID:          caller.ClientID,
		Request:           req,
		Response:          text,
		Service:           service,
	}
	if err := s.Audit.Record(ctx, entry, now); err != nil {
		observability.AuditWriteFailures.Inc()
		log.Error().
			Err(err).
			Str("event", "audit_write_failed").
			Str("request_id", res.RequestID).
			Str("service", service).
			Msg("audit_write_failed")
	}
	span.SetAttributes(attribute.String("wish.request_id", res.RequestID), attribute.String("wish.service", service))
	return res, nil
}

// Regenerate re-runs the request stored under originalID, optionally with
// extra context appended, and links the new audit row to it.
func (s *WishService) Regenerate(ctx context.Context, originalID, additionalContext string, caller Caller, now time.Time) (*WishResult, error) {
	orig, err := s.Audit.Get(ctx, originalID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrWishNotFound
	}
	if err != nil {
		return nil, err
	}
	var req WishRequest
	if err := json.Unmarshal([]byte(orig.RequestPayload), &req); err != nil {
		return nil, fmt.Errorf("decode original request: %w", err)
	}
	if extra := strings.TrimSpace(additionalContext); extra != "" {
		req.Context = strings.TrimSpace(req.Context + " " + extra)
		if s.MaxContextRunes > 0 {
			if r := []rune(req.Context); len(r) > s.MaxContextRunes {
				req.Context = string(r[:s.MaxContextRunes])
			}
		}
	}
	id := orig.RequestID
	return s.Generate(ctx, req, caller, now, &id)
}

// LimitStatus reports the caller's limiter state without mutating it.
func (s *WishService) LimitStatus(ctx context.Context, caller Caller, now time.Time) (Decision, error) {
	return s.Limiter.Peek(ctx, caller.ClientID, now)
}

// Replay rebuilds the result of an earlier generation without generating
// or counting again. Anonymous callers get their current limiter state.
func (s *WishService) Replay(ctx context.Context, requestID string, caller Caller, now time.Time) (*WishResult, error) {
	entry, err := s.Audit.Get(ctx, requestID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrWishNotFound
	}
	if err != nil {
		return nil, err
	}
	res := &WishResult{
		Text:              entry.ResponsePayload,
		RequestID:         entry.RequestID,
		OriginalRequestID: entry.OriginalRequestID,
		Service:           entry.ServiceUsed,
	}
	if !caller.Authenticated {
		if d, err := s.Limiter.Peek(ctx, caller.ClientID, now); err == nil {
			remaining, reset := d.Remaining, d.ResetAt
			res.RemainingRequests, res.ResetAt = &remaining, &reset
		}
	}
	return res, nil
}
