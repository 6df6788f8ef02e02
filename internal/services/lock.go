package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker provides non-blocking mutual exclusion keyed by string. The
// dispatcher takes one lock per (record, date) so overlapping runs do not
// send the same message twice.
type Locker interface {
	// TryLock returns ok=false without waiting when key is held elsewhere.
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

// MemoryLocker serializes within one process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (m *MemoryLocker) TryLock(_ context.Context, key string) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.held[key]; busy {
		return nil, false, nil
	}
	m.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}, true, nil
}

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates across instances with SET NX PX. The TTL bounds
// how long a crashed holder can block a key.
type RedisLocker struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{Client: client, Prefix: "celebrations:lock:", TTL: ttl}
}

func (r *RedisLocker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, false, err
	}
	token := hex.EncodeToString(buf)
	full := r.Prefix + key

	ok, err := r.Client.SetNX(ctx, full, token, r.TTL).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, r.Client, []string{full}, token).Err()
	}, true, nil
}
