package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry: a client's token bucket and its last use
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter: one rate limiter per client key (uid or IP)
type ClientLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex

	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewClientLimiter: allows perMinute requests per client with the given burst.
// A non-positive perMinute disables limiting.
func NewClientLimiter(perMinute, burst int) *ClientLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow: reports whether key may make a request now
func (cl *ClientLimiter) Allow(key string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	entry, exists := cl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// Len: number of tracked clients
func (cl *ClientLimiter) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.limiters)
}

// Cleanup: drops limiters idle for longer than maxIdle
func (cl *ClientLimiter) Cleanup(maxIdle time.Duration) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	removed := 0
	for key, entry := range cl.limiters {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(cl.limiters, key)
			removed++
		}
	}
	return removed
}

// RunJanitor: calls Cleanup every interval until ctx is done
func (cl *ClientLimiter) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cl.Cleanup(maxIdle)
		}
	}
}
