package fetch

import (
	"context"
	"time"

	"github.com/archerdnd/grimoire"
)

// Backoff describes the retry schedule for transient per-kind fetch
// failures. It is an explicit state machine (attempt count in, delay
// out) so bounds and cancellation are easy to test in isolation.
type Backoff struct {
	// Base is the delay before the first retry.
	Base time.Duration

	// Factor multiplies the delay after each retry.
	Factor float64

	// Max caps a single delay.
	Max time.Duration

	// MaxAttempts bounds total attempts, the initial one included.
	MaxAttempts int
}

// DefaultBackoff returns the standard schedule: 500ms base, doubling,
// capped at 8s, four attempts total.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        500 * time.Millisecond,
		Factor:      2,
		Max:         8 * time.Second,
		MaxAttempts: 4,
	}
}

// Delay returns the wait before retry attempt n (n=1 is the first
// retry). Returns false when the schedule is exhausted.
func (b Backoff) Delay(n int) (time.Duration, bool) {
	if n < 1 || n >= b.MaxAttempts {
		return 0, false
	}
	d := b.Base
	for i := 1; i < n; i++ {
		d = time.Duration(float64(d) * b.Factor)
		if d >= b.Max {
			d = b.Max
			break
		}
	}
	if d > b.Max {
		d = b.Max
	}
	return d, true
}

// retryable reports whether an error class warrants another attempt.
// Only transient transport failures retry; remote rejections and
// cancellation do not.
func retryable(err error) bool {
	return grimoire.ErrorCode(err) == grimoire.EUNAVAILABLE
}

// fetchWithRetry runs fn under the backoff schedule. It returns the
// result of the last attempt and how many attempts were made. The
// context is checked before every attempt and during every delay.
func fetchWithRetry(ctx context.Context, b Backoff, fn func(ctx context.Context) ([]*grimoire.Entry, error)) ([]*grimoire.Entry, int, error) {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, attempts, grimoire.Errorf(grimoire.ECANCELED, "fetch canceled: %v", err)
		}

		attempts++
		entries, err := fn(ctx)
		if err == nil {
			return entries, attempts, nil
		}
		if !retryable(err) {
			return nil, attempts, err
		}

		delay, ok := b.Delay(attempts)
		if !ok {
			return nil, attempts, err
		}

		select {
		case <-ctx.Done():
			return nil, attempts, grimoire.Errorf(grimoire.ECANCELED, "fetch canceled: %v", ctx.Err())
		case <-time.After(delay):
		}
	}
}
