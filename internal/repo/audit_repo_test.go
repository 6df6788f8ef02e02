package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

func TestAudit_CreateGetAndRegenerations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	orig := &domain.AuditLogEntry{
		RequestID: "01J00000000000000000000001", ClientHash: "abc",
		RequestPayload: `{"name":"Ada"}`, ResponsePayload: "Happy birthday", ServiceUsed: "groq", CreatedAt: now,
	}
	if err := CreateAudit(ctx, db, orig); err != nil {
		t.Fatalf("CreateAudit: %v", err)
	}

	origID := orig.RequestID
	regen := &domain.AuditLogEntry{
		RequestID: "01J00000000000000000000002", OriginalRequestID: &origID, ClientHash: "abc",
		RequestPayload: `{"name":"Ada"}`, ResponsePayload: "Another one", ServiceUsed: "template", CreatedAt: now.Add(time.Second),
	}
	if err := CreateAudit(ctx, db, regen); err != nil {
		t.Fatalf("CreateAudit regen: %v", err)
	}

	got, err := GetAudit(ctx, db, origID)
	if err != nil || got.ServiceUsed != "groq" || got.OriginalRequestID != nil {
		t.Fatalf("GetAudit = (%+v, %v)", got, err)
	}

	list, err := ListRegenerations(ctx, db, origID)
	if err != nil || len(list) != 1 || list[0].RequestID != regen.RequestID {
		t.Fatalf("ListRegenerations = (%+v, %v)", list, err)
	}

	if _, err := GetAudit(ctx, db, "missing"); err != ErrNotFound {
		t.Fatalf("GetAudit missing: %v", err)
	}

	dup := *orig
	dup.ID = 0
	if err := CreateAudit(ctx, db, &dup); err != ErrDuplicate {
		t.Fatalf("duplicate request id: %v", err)
	}
}
