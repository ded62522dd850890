// Package ratelimit provides client-side rate limiting for outbound catalog
// requests using a token bucket algorithm.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Limiter blocks until the caller may issue its next request.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Clock abstracts time so the bucket can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// TokenBucket represents a token bucket rate limiter.
// It allows a burst of requests up to capacity, with tokens refilling at a
// steady rate.
type TokenBucket struct {
	capacity   int        // Maximum tokens (burst capacity)
	refillRate float64    // Tokens per second
	tokens     float64    // Current tokens available
	lastRefill time.Time  // Last time tokens were refilled
	clock      Clock
	mu         sync.Mutex // Mutex for thread safety
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(capacity int, refillRate float64, clock Clock) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	if clock == nil {
		clock = RealClock
	}
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: clock.Now(),
		clock:      clock,
	}
}

// Every returns a bucket allowing one request per interval with no burst.
func Every(interval time.Duration, clock Clock) *TokenBucket {
	return NewTokenBucket(1, float64(time.Second)/float64(interval), clock)
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	return tb.reserve() == 0
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := tb.reserve()
		if wait == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tb.clock.After(wait):
		}
	}
}

// reserve consumes a token and returns 0, or returns how long until one is
// available.
func (tb *TokenBucket) reserve() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// Refill tokens based on time elapsed
	now := tb.clock.Now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return 0
	}

	if tb.refillRate <= 0 {
		return time.Second
	}
	needed := (1.0 - tb.tokens) / tb.refillRate
	wait := time.Duration(math.Ceil(needed * float64(time.Second)))
	return max(wait, time.Nanosecond)
}

// Unlimited never blocks.
type Unlimited struct{}

// Wait returns immediately unless ctx is already done.
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
