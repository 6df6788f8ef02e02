// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the rate-limit counter primitives: a
// read, an insert-if-absent and a compare-and-swap update keyed on the row
// version. Together they let the limiter apply read-modify-write atomically
// per client without holding a transaction across round trips.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// GetCounter returns the counter for clientID or ErrNotFound.
func GetCounter(ctx context.Context, db *gorm.DB, clientID string) (*domain.RateLimitCounter, error) {
	var c domain.RateLimitCounter
	err := db.WithContext(ctx).Where("client_id = ?", clientID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCounter inserts c unless a row for the same client already exists.
// It reports whether this call created the row.
func InsertCounter(ctx context.Context, db *gorm.DB, c *domain.RateLimitCounter) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "client_id"}}, DoNothing: true}).
		Create(c)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SwapCounter persists the new count/window for c only if the stored version
// still equals expect. On success c.Version is advanced; a false result
// means another writer won the race and the caller should re-read.
func SwapCounter(ctx context.Context, db *gorm.DB, c *domain.RateLimitCounter, expect int64) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.RateLimitCounter{}).
		Where("client_id = ? AND version = ?", c.ClientID, expect).
		Updates(map[string]any{
			"request_count":     c.RequestCount,
			"window_start":      c.WindowStart,
			"last_request_time": c.LastRequestTime,
			"version":           expect + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	c.Version = expect + 1
	return true, nil
}

// PruneCounters deletes counters idle since before cutoff and returns the
// number of rows removed.
func PruneCounters(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("last_request_time < ?", cutoff).
		Delete(&domain.RateLimitCounter{})
	return res.RowsAffected, res.Error
}
