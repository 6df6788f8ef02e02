package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
)

// ClaimDispatch reserves (recordID, sentDate) for owner until now+ttl. It
// reports false when another owner holds a claim that has not expired.
// An expired claim is taken over with a conditional update, so two workers
// racing for the same stale claim cannot both win.
func ClaimDispatch(ctx context.Context, db *gorm.DB, recordID uint, sentDate, owner string, now time.Time, ttl time.Duration) (bool, error) {
	key := SuccessKey(recordID, sentDate)
	now = now.UTC()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "claim_key"}}, DoNothing: true}).
		Create(&domain.DispatchClaim{ClaimKey: key, Owner: owner, ExpiresAt: now.Add(ttl)})
	if res.Error != nil && !isDuplicate(res.Error) {
		return false, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return true, nil
	}

	res = db.WithContext(ctx).
		Model(&domain.DispatchClaim{}).
		Where("claim_key = ? AND expires_at <= ?", key, now).
		Updates(map[string]any{"owner": owner, "expires_at": now.Add(ttl)})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseDispatch drops owner's claim on (recordID, sentDate). Claims held
// by other owners are left alone.
func ReleaseDispatch(ctx context.Context, db *gorm.DB, recordID uint, sentDate, owner string) error {
	return db.WithContext(ctx).
		Where("claim_key = ? AND owner = ?", SuccessKey(recordID, sentDate), owner).
		Delete(&domain.DispatchClaim{}).Error
}
