package services

import (
	"context"
	"time"
)

// boundStore caps one store call at d. A zero d leaves ctx as is.
func boundStore(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}
