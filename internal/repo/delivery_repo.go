package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// SuccessKey builds the value stored in delivery_log.success_key.
func SuccessKey(recordID uint, sentDate string) string {
	return fmt.Sprintf("%d:%s", recordID, sentDate)
}

// HasSuccessfulDelivery reports whether (recordID, sentDate) already has a
// successful delivery row.
func HasSuccessfulDelivery(ctx context.Context, db *gorm.DB, recordID uint, sentDate string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.DeliveryLogEntry{}).
		Where("roster_record_id = ? AND sent_date = ? AND success = ?", recordID, sentDate, true).
		Count(&n).Error
	return n > 0, err
}

// CountFailedDeliveries counts failed attempts for (recordID, sentDate).
func CountFailedDeliveries(ctx context.Context, db *gorm.DB, recordID uint, sentDate string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.DeliveryLogEntry{}).
		Where("roster_record_id = ? AND sent_date = ? AND success = ?", recordID, sentDate, false).
		Count(&n).Error
	return n, err
}

// CreateDelivery appends a delivery row. Successful rows get a success key,
// so a second success for the same (record, date) fails with ErrDuplicate.
func CreateDelivery(ctx context.Context, db *gorm.DB, e *domain.DeliveryLogEntry) error {
	e.SuccessKey = nil
	if e.Success {
		k := SuccessKey(e.RosterRecordID, e.SentDate)
		e.SuccessKey = &k
	}
	if err := db.WithContext(ctx).Omit("RosterRecord").Create(e).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListDeliveries returns every attempt logged for sentDate, oldest first.
func ListDeliveries(ctx context.Context, db *gorm.DB, sentDate string) ([]domain.DeliveryLogEntry, error) {
	var out []domain.DeliveryLogEntry
	err := db.WithContext(ctx).
		Where("sent_date = ?", sentDate).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
