// Package limiter wraps a token bucket rate limiter whose rate and
// burst can be adjusted while the server is running.
package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DynamicRateLimiter refills one token per interval up to the burst
// size. Safe for concurrent use.
type DynamicRateLimiter struct {
	limiter *rate.Limiter
}

func NewDynamicRateLimiter(interval time.Duration, burst int) *DynamicRateLimiter {
	return &DynamicRateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// Allow reports whether a token is available and consumes it if so.
func (drl *DynamicRateLimiter) Allow() bool {
	return drl.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (drl *DynamicRateLimiter) Wait(ctx context.Context) error {
	return drl.limiter.Wait(ctx)
}

// Update applies a new interval and burst size. Tokens already spent
// count against the new burst.
func (drl *DynamicRateLimiter) Update(interval time.Duration, burst int) {
	drl.limiter.SetLimit(rate.Every(interval))
	drl.limiter.SetBurst(burst)
}
