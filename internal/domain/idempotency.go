package domain

import "time"

// Idempotency binds a client-supplied Idempotency-Key to the wish it
// produced, keyed by (client_hash, key). A retried POST /wish carrying the
// same key replays the stored wish instead of generating (and counting) a
// new one.
type Idempotency struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	ClientHash string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_client_key,priority:1"`
	Key        string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_client_key,priority:2"`
	RequestID  string    `gorm:"type:char(26);not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
