package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// CreateAudit appends an audit entry. The audit trail has no update or
// delete helpers.
func CreateAudit(ctx context.Context, db *gorm.DB, e *domain.AuditLogEntry) error {
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetAudit returns the entry for requestID or ErrNotFound.
func GetAudit(ctx context.Context, db *gorm.DB, requestID string) (*domain.AuditLogEntry, error) {
	var e domain.AuditLogEntry
	err := db.WithContext(ctx).Where("request_id = ?", requestID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListRegenerations returns entries derived from originalID, oldest first.
func ListRegenerations(ctx context.Context, db *gorm.DB, originalID string) ([]domain.AuditLogEntry, error) {
	var out []domain.AuditLogEntry
	err := db.WithContext(ctx).
		Where("original_request_id = ?", originalID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
