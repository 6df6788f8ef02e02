// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides roster persistence: the upsert used by
// CSV imports, listing, lookups by recurring month-day and soft
// deactivation. Records are never hard-deleted.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// UpsertRoster inserts rec or updates the existing record with the same
// (name, event_type). Updating re-activates the record. It reports whether
// a new row was created; rec is filled with the persisted state.
func UpsertRoster(ctx context.Context, db *gorm.DB, rec *domain.RosterRecord) (bool, error) {
	var existing domain.RosterRecord
	err := db.WithContext(ctx).
		Where("name = ? AND event_type = ?", rec.Name, rec.EventType).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec.ID = 0
		rec.Active = true
		if err := db.WithContext(ctx).Create(rec).Error; err != nil {
			if isDuplicate(err) {
				return false, ErrDuplicate
			}
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	res := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"event_date": rec.EventDate,
		"year":       rec.Year,
		"spouse":     rec.Spouse,
		"active":     true,
	})
	if res.Error != nil {
		return false, res.Error
	}
	existing.EventDate, existing.Year, existing.Spouse, existing.Active = rec.EventDate, rec.Year, rec.Spouse, true
	*rec = existing
	return false, nil
}

// GetRoster returns the record with id or ErrNotFound.
func GetRoster(ctx context.Context, db *gorm.DB, id uint) (*domain.RosterRecord, error) {
	var r domain.RosterRecord
	err := db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoster returns records ordered by event date then name. When
// activeOnly is set, deactivated records are skipped.
func ListRoster(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.RosterRecord, error) {
	q := db.WithContext(ctx).Model(&domain.RosterRecord{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []domain.RosterRecord
	err := q.Order("event_date ASC, name ASC, id ASC").Find(&out).Error
	return out, err
}

// ListActiveByMonthDay returns active records whose recurring date equals
// monthDay ("MM-DD").
func ListActiveByMonthDay(ctx context.Context, db *gorm.DB, monthDay string) ([]domain.RosterRecord, error) {
	var out []domain.RosterRecord
	err := db.WithContext(ctx).
		Where("event_date = ? AND active = ?", monthDay, true).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// SetRosterActive flips the active flag for id. Returns ErrNotFound when no
// row matched.
func SetRosterActive(ctx context.Context, db *gorm.DB, id uint, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.RosterRecord{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRosterImport records the outcome of one CSV upload.
func CreateRosterImport(ctx context.Context, db *gorm.DB, imp *domain.RosterImport) error {
	return db.WithContext(ctx).Create(imp).Error
}

// ListRosterImports returns the most recent uploads first.
func ListRosterImports(ctx context.Context, db *gorm.DB, limit int) ([]domain.RosterImport, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.RosterImport
	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
