package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every call the provider makes, so that
// all dashboard sessions together stay under the upstream plan limit.
type RateLimiter struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewRateLimiter allows a burst of maxTokens and adds one token per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Second
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// NewPerMinuteLimiter spreads perMinute calls evenly across a minute.
func NewPerMinuteLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return NewRateLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take consumes a token, or reports how long until the next one is due.
func (r *RateLimiter) take() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if n := int(now.Sub(r.lastRefill) / r.refillInterval); n > 0 {
		r.tokens += n
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(n) * r.refillInterval)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0, true
	}
	return r.refillInterval - now.Sub(r.lastRefill), false
}
