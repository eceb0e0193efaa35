package fetch

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter enforces the remote's request budget with a token bucket.
// The remote allows 15 requests per minute; every request a sync makes
// waits on the shared limiter first.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter allowing the given number of requests
// per minute with a burst of 1 (no bursting).
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

// Wait blocks until the budget allows another request.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
