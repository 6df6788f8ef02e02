package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-celebrations-backend/internal/domain"
	"github.com/tbourn/go-celebrations-backend/internal/repo"
)

var t0 = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestRateLimiter_ThreeAdmittedThenDenied(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()

	for i, want := range []int{2, 1, 0} {
		d, err := l.CheckAndIncrement(ctx, "1.2.3.4", t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if !d.Allowed || d.Remaining != want {
			t.Fatalf("request %d: %+v, want allowed remaining=%d", i+1, d, want)
		}
		if !d.ResetAt.Equal(t0.Add(3 * time.Hour)) {
			t.Fatalf("request %d: reset_at = %v", i+1, d.ResetAt)
		}
	}

	d, err := l.CheckAndIncrement(ctx, "1.2.3.4", t0.Add(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if d.Allowed || d.Remaining != 0 || !d.ResetAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("4th request: %+v", d)
	}

	// A denial must not write.
	c, err := repo.GetCounter(ctx, db, "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if c.RequestCount != 3 || !c.LastRequestTime.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("counter after denial = %+v", c)
	}
}

func TestRateLimiter_ResetAfterWindow(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, _ = l.CheckAndIncrement(ctx, "c", t0)
	}

	later := t0.Add(3 * time.Hour) // exactly at reset_at
	d, err := l.CheckAndIncrement(ctx, "c", later)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Allowed || d.Remaining != 2 || d.RequestCount != 1 || !d.ResetAt.Equal(later.Add(3*time.Hour)) {
		t.Fatalf("after reset: %+v", d)
	}
	c, _ := repo.GetCounter(ctx, db, "c")
	if c.RequestCount != 1 || !c.WindowStart.Equal(later) {
		t.Fatalf("stored counter = %+v", c)
	}
}

func TestRateLimiter_ConcurrentLastSlot(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := l.CheckAndIncrement(ctx, "racer", t0); err != nil {
			t.Fatal(err)
		}
	}

	const n = 2
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
		denied  int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			d, err := l.CheckAndIncrement(ctx, "racer", t0.Add(time.Minute))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("CheckAndIncrement: %v", err)
				return
			}
			if d.Allowed {
				allowed++
			} else {
				denied++
			}
		}()
	}
	close(start)
	wg.Wait()

	if allowed != 1 || denied != 1 {
		t.Fatalf("allowed=%d denied=%d, want 1/1", allowed, denied)
	}
	c, _ := repo.GetCounter(ctx, db, "racer")
	if c.RequestCount != 3 {
		t.Fatalf("count = %d, want 3", c.RequestCount)
	}
}

func TestRateLimiter_ConcurrentFirstRequests(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.CheckAndIncrement(ctx, "burst", t0)
			if err != nil {
				t.Errorf("CheckAndIncrement: %v", err)
				return
			}
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
}

func TestRateLimiter_FailsClosed(t *testing.T) {
	db := newSvcDB(t)
	failTable(t, db, domain.RateLimitCounter{}.TableName(), "query")
	l := NewRateLimiter(db, 3, 3*time.Hour)

	d, err := l.CheckAndIncrement(context.Background(), "x", t0)
	if !errors.Is(err, ErrLimiterUnavailable) {
		t.Fatalf("err = %v, want ErrLimiterUnavailable", err)
	}
	if d.Allowed {
		t.Fatal("must not admit when the store is unavailable")
	}
	if _, err := l.Peek(context.Background(), "x", t0); !errors.Is(err, ErrLimiterUnavailable) {
		t.Fatalf("Peek err = %v", err)
	}
}

func TestRateLimiter_PeekDoesNotMutate(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()

	d, err := l.Peek(ctx, "p", t0)
	if err != nil || d.Remaining != 3 || d.RequestCount != 0 {
		t.Fatalf("Peek unknown = %+v, %v", d, err)
	}
	if _, err := repo.GetCounter(ctx, db, "p"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Peek created a counter: %v", err)
	}

	_, _ = l.CheckAndIncrement(ctx, "p", t0)
	d, _ = l.Peek(ctx, "p", t0.Add(time.Minute))
	if d.Remaining != 2 || d.RequestCount != 1 || !d.ResetAt.Equal(t0.Add(3*time.Hour)) {
		t.Fatalf("Peek in window = %+v", d)
	}

	// Expired window is reported fresh but not persisted.
	later := t0.Add(4 * time.Hour)
	d, _ = l.Peek(ctx, "p", later)
	if d.Remaining != 3 || !d.ResetAt.Equal(later.Add(3*time.Hour)) {
		t.Fatalf("Peek expired = %+v", d)
	}
	c, _ := repo.GetCounter(ctx, db, "p")
	if c.RequestCount != 1 || !c.WindowStart.Equal(t0) {
		t.Fatalf("counter mutated by Peek: %+v", c)
	}
}

func TestRateLimiter_PruneStale(t *testing.T) {
	db := newSvcDB(t)
	l := NewRateLimiter(db, 3, 3*time.Hour)
	ctx := context.Background()
	_, _ = l.CheckAndIncrement(ctx, "old", t0)
	_, _ = l.CheckAndIncrement(ctx, "new", t0.Add(30*time.Hour))

	n, err := l.PruneStale(ctx, t0.Add(31*time.Hour), 24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("PruneStale = %d, %v", n, err)
	}
	if _, err := repo.GetCounter(ctx, db, "old"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatal("stale counter should be gone")
	}
	if _, err := repo.GetCounter(ctx, db, "new"); err != nil {
		t.Fatal("recent counter should remain")
	}
}

func TestRateLimitExceededError_RetryAfter(t *testing.T) {
	e := &RateLimitExceededError{ResetAt: t0.Add(90*time.Second + 200*time.Millisecond)}
	if got := e.RetryAfter(t0); got != 91 {
		t.Fatalf("RetryAfter = %d, want 91", got)
	}
	if got := e.RetryAfter(t0.Add(time.Hour)); got != 1 {
		t.Fatalf("RetryAfter past reset = %d, want 1", got)
	}
	if e.Error() == "" {
		t.Fatal("empty error message")
	}
}
