package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	Allow(guest string) bool
}

// InMemoryLimiter is an implementation of Limiter stored in memory, keyed by
// guest identity (email, or name for guests without one).
type InMemoryLimiter struct {
	guests map[string]*rate.Limiter
	mu     sync.Mutex
	r      rate.Limit // Rate of adding tokens (e.g., 1 submission every 10 seconds)
	b      int        // Bucket size (e.g., can submit 3 posts in a row)
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(6, time.Minute, 3) -> allows 6 submissions per minute, burst of 3
func NewInMemoryLimiter(requests int, per time.Duration, burst int) Limiter {
	if requests <= 0 {
		requests = 1
	}
	return &InMemoryLimiter{
		guests: make(map[string]*rate.Limiter),
		r:      rate.Every(per / time.Duration(requests)),
		b:      burst,
	}
}

// Allow checks if a guest is allowed to perform an action
func (l *InMemoryLimiter) Allow(guest string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.guests[guest]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.guests[guest] = limiter
	}

	return limiter.Allow()
}
