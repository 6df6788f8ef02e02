// Package services – AuditRecorder
//
// AuditRecorder appends one row per successful generation. Client ids are
// stored only as a keyed BLAKE2b-256 digest so the trail can correlate
// requests from one client without retaining the address itself.
package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

// AuditEntry is the input to AuditRecorder.Record.
type AuditEntry struct {
	RequestID         string
	OriginalRequestID *string
	ClientID          string
	Request           any
	Response          string
	Service           string
}

// AuditRecorder writes the append-only wish audit trail.
type AuditRecorder struct {
	DB      *gorm.DB
	Key     []byte        // BLAKE2b key; at most 64 bytes
	Timeout time.Duration // per store call; 0 disables
}

// NewAuditRecorder returns a recorder keyed with key. Keys longer than 64
// bytes are truncated.
func NewAuditRecorder(db *gorm.DB, key string) *AuditRecorder {
	k := []byte(key)
	if len(k) > blake2b.Size {
		k = k[:blake2b.Size]
	}
	return &AuditRecorder{DB: db, Key: k}
}

// HashClient returns the hex digest stored in client_hash.
func (a *AuditRecorder) HashClient(clientID string) string {
	h, err := blake2b.New256(a.Key)
	if err != nil {
		// Only reachable with a key over 64 bytes, which the constructor prevents.
		sum := blake2b.Sum256([]byte(clientID))
		return hex.EncodeToString(sum[:])
	}
	h.Write([]byte(clientID))
	return hex.EncodeToString(h.Sum(nil))
}

// Record appends e. Errors are returned to the caller unchanged apart from
// wrapping; nothing is retried or swallowed here.
func (a *AuditRecorder) Record(ctx context.Context, e AuditEntry, now time.Time) error {
	tr := otel.Tracer("services/AuditRecorder")
	ctx, span := tr.Start(ctx, "Record", trace.WithAttributes(
		attribute.String("wish.request_id", e.RequestID),
		attribute.String("wish.service", e.Service),
	))
	defer span.End()

	payload, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("audit: encode request: %w", err)
	}
	row := &domain.AuditLogEntry{
		RequestID:         e.RequestID,
		OriginalRequestID: e.OriginalRequestID,
		ClientHash:        a.HashClient(e.ClientID),
		RequestPayload:    string(payload),
		ResponsePayload:   e.Response,
		ServiceUsed:       e.Service,
		CreatedAt:         now.UTC(),
	}
	ctx, cancel := boundStore(ctx, a.Timeout)
	defer cancel()
	if err := repo.CreateAudit(ctx, a.DB, row); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

// Get returns the entry for requestID.
func (a *AuditRecorder) Get(ctx context.Context, requestID string) (*domain.AuditLogEntry, error) {
	ctx, cancel := boundStore(ctx, a.Timeout)
	defer cancel()
	return repo.GetAudit(ctx, a.DB, requestID)
}
