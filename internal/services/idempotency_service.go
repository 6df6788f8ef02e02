// Package services – IdempotencyStore
//
// IdempotencyStore lets a client retry POST /wish with the same
// Idempotency-Key and receive the wish it already paid for, without
// spending another rate-limit slot. Keys are scoped to the hashed client
// id and expire after TTL.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

type IdempotencyStore struct {
	DB   *gorm.DB
	Hash func(clientID string) string
	TTL  time.Duration

	Timeout time.Duration // per store call; 0 disables
}

func NewIdempotencyStore(db *gorm.DB, hash func(string) string, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{DB: db, Hash: hash, TTL: ttl}
}

func (s *IdempotencyStore) scope(clientID string) string {
	if s.Hash == nil {
		return clientID
	}
	return s.Hash(clientID)
}

// Lookup returns the request id stored for (clientID, key), or "" when
// there is none. Lookup errors are reported so the caller can log them.
func (s *IdempotencyStore) Lookup(ctx context.Context, clientID, key string, now time.Time) (string, error) {
	ctx, cancel := boundStore(ctx, s.Timeout)
	defer cancel()
	rec, err := repo.GetIdempotency(ctx, s.DB, s.scope(clientID), key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.RequestID, nil
}

// Remember binds key to requestID. A concurrent request that stored the
// same key first wins; that is not an error.
func (s *IdempotencyStore) Remember(ctx context.Context, clientID, key, requestID string) error {
	ctx, cancel := boundStore(ctx, s.Timeout)
	defer cancel()
	_, err := repo.CreateIdempotency(ctx, s.DB, s.scope(clientID), key, requestID, http.StatusOK, s.TTL)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes expired keys.
func (s *IdempotencyStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := boundStore(ctx, s.Timeout)
	defer cancel()
	return repo.PurgeIdempotency(ctx, s.DB, now)
}
