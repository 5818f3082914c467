// Package ratelimiter throttles calls against the upstream feed's request
// quota.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface limits the frequency of operations such as API calls.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter spreads up to limit calls evenly over each interval.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter allowing limit calls per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
	}
}

// WaitIfNeeded blocks until the next call is within the quota.
func (rl *RateLimiter) WaitIfNeeded() {
	// The context is never cancelled, so Wait only errors on impossible
	// limiter configurations.
	_ = rl.limiter.Wait(context.Background())
}
