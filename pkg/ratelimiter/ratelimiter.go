// Package ratelimiter throttles callers per client key.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Allow(key string) bool
}

// DefaultIdleTTL is how long an unused client bucket is kept.
const DefaultIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per client key, so one noisy client
// cannot drain the allowance of another.
type KeyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyedLimiter allows refillRate events per second per key with the given
// burst. Non-positive values are raised to 1.
func NewKeyedLimiter(burst, refillRate int64) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}

	kl := &KeyedLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(refillRate),
		burst:    int(burst),
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
	}
	kl.lastSweep = kl.now()
	return kl
}

// Allow consumes one token from key's bucket and reports whether it did.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	now := kl.now()
	if now.Sub(kl.lastSweep) >= kl.idleTTL {
		kl.sweep(now)
	}

	entry, ok := kl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(kl.rate, kl.burst)}
		kl.limiters[key] = entry
	}
	entry.lastSeen = now
	kl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len reports how many client buckets are tracked.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

// sweep evicts buckets idle for longer than idleTTL. Caller holds mu.
func (kl *KeyedLimiter) sweep(now time.Time) {
	for key, entry := range kl.limiters {
		if now.Sub(entry.lastSeen) > kl.idleTTL {
			delete(kl.limiters, key)
		}
	}
	kl.lastSweep = now
}
