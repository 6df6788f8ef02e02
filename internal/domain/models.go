// Package domain defines the persistence models for the celebrations
// backend: rate-limit counters, the wish audit trail, the celebration
// roster and the daily delivery log. These types are mapped with GORM and
// shared by the repository and service layers.
package domain

import (
	"time"
)

// Event types stored on roster records.
const (
	EventBirthday    = "birthday"
	EventAnniversary = "anniversary"
)

// RateLimitCounter tracks how many generation requests a single client made
// inside its current fixed window.
//
// Fields:
//   - ClientID: caller identity (IP-derived); unique.
//   - RequestCount: admitted requests in the current window (>= 0).
//   - WindowStart: instant the current window began.
//   - LastRequestTime: instant of the most recent admitted request.
//   - Version: optimistic-concurrency token bumped on every write.
//
// Rows are created lazily on a client's first request and updated in place.
type RateLimitCounter struct {
	ID              uint      `json:"-"                 gorm:"primaryKey;autoIncrement"`
	ClientID        string    `json:"client_id"         gorm:"type:varchar(128);not null;uniqueIndex:ux_rate_limit_client"`
	RequestCount    int       `json:"request_count"     gorm:"not null;default:0;check:request_count >= 0"`
	WindowStart     time.Time `json:"window_start"      gorm:"not null"`
	LastRequestTime time.Time `json:"last_request_time" gorm:"not null;index"`
	Version         int64     `json:"-"                 gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for RateLimitCounter.
func (RateLimitCounter) TableName() string { return "rate_limit_counters" }

// AuditLogEntry is an append-only record of one successful wish generation.
// The client identifier is stored as a keyed hash, never in plain form.
type AuditLogEntry struct {
	ID                uint      `json:"-"                            gorm:"primaryKey;autoIncrement"`
	RequestID         string    `json:"request_id"                   gorm:"type:char(26);not null;uniqueIndex:ux_audit_request"`
	OriginalRequestID *string   `json:"original_request_id,omitempty" gorm:"type:char(26);index"`
	ClientHash        string    `json:"client_hash"                  gorm:"type:varchar(64);not null;index"`
	RequestPayload    string    `json:"request_payload"              gorm:"type:text;not null"`
	ResponsePayload   string    `json:"response_payload"             gorm:"type:text;not null"`
	ServiceUsed       string    `json:"service_used"                 gorm:"type:varchar(32);not null"`
	CreatedAt         time.Time `json:"created_at"                   gorm:"not null;index"`
}

// TableName returns the database table name for AuditLogEntry.
func (AuditLogEntry) TableName() string { return "wish_audit_log" }

// RosterRecord is one recurring event from the uploaded roster. Records are
// deactivated rather than deleted.
//
// EventDate is a recurring "MM-DD"; Year, when known, is the birth or
// wedding year used to compute ages and anniversaries.
type RosterRecord struct {
	ID        uint      `json:"id"               gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"             gorm:"type:varchar(255);not null;uniqueIndex:ux_roster_name_type,priority:1"`
	EventType string    `json:"event_type"       gorm:"type:varchar(16);not null;uniqueIndex:ux_roster_name_type,priority:2;check:event_type IN ('birthday','anniversary')"`
	EventDate string    `json:"event_date"       gorm:"type:char(5);not null;index:idx_roster_due,priority:1"`
	Year      *int      `json:"year,omitempty"`
	Spouse    *string   `json:"spouse,omitempty" gorm:"type:varchar(255)"`
	Active    bool      `json:"active"           gorm:"not null;default:true;index:idx_roster_due,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for RosterRecord.
func (RosterRecord) TableName() string { return "roster_records" }

// DeliveryLogEntry records one dispatch attempt for a roster record on a
// calendar date. Rows are never mutated.
//
// SuccessKey is "<record>:<date>" on successful rows and NULL otherwise; its
// unique index guarantees at most one success per (record, date) while
// allowing any number of failed attempts.
type DeliveryLogEntry struct {
	ID             uint      `json:"id"                      gorm:"primaryKey;autoIncrement"`
	RosterRecordID uint      `json:"roster_record_id"        gorm:"not null;index:idx_delivery_record_date,priority:1"`
	MessageContent string    `json:"message_content"         gorm:"type:text;not null"`
	SentDate       string    `json:"sent_date"               gorm:"type:char(10);not null;index:idx_delivery_record_date,priority:2"`
	Success        bool      `json:"success"                 gorm:"not null"`
	ErrorMessage   *string   `json:"error_message,omitempty" gorm:"type:text"`
	DeliveryID     *string   `json:"delivery_id,omitempty"   gorm:"type:varchar(128)"`
	SuccessKey     *string   `json:"-"                       gorm:"type:varchar(64);uniqueIndex:ux_delivery_success"`
	CreatedAt      time.Time `json:"created_at"`

	RosterRecord RosterRecord `json:"-" gorm:"foreignKey:RosterRecordID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for DeliveryLogEntry.
func (DeliveryLogEntry) TableName() string { return "delivery_log" }

// DispatchClaim reserves a (record, date) pair for one dispatch worker
// before anything is generated or sent. ClaimKey has the SuccessKey format
// and is unique, so across processes only one worker holds a pair; a claim
// whose ExpiresAt has passed may be taken over by another worker.
type DispatchClaim struct {
	ID        uint      `json:"-"          gorm:"primaryKey;autoIncrement"`
	ClaimKey  string    `json:"claim_key"  gorm:"type:varchar(64);not null;uniqueIndex:ux_dispatch_claim"`
	Owner     string    `json:"owner"      gorm:"type:varchar(64);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for DispatchClaim.
func (DispatchClaim) TableName() string { return "dispatch_claims" }

// RosterImport summarizes one CSV roster upload.
type RosterImport struct {
	ID               uint      `json:"id"                      gorm:"primaryKey;autoIncrement"`
	Filename         string    `json:"filename"                gorm:"type:varchar(255);not null"`
	RecordsProcessed int       `json:"records_processed"`
	RecordsAdded     int       `json:"records_added"`
	RecordsUpdated   int       `json:"records_updated"`
	Success          bool      `json:"success"`
	ErrorMessage     *string   `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for RosterImport.
func (RosterImport) TableName() string { return "roster_imports" }
