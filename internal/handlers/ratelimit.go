package handlers

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter provides thread-safe rate limiting for one process
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewRateLimiter returns nil when requestsPerSecond is 0, which disables limiting
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow reports whether a request may proceed. A nil limiter allows everything.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.limiter.Allow()
}
