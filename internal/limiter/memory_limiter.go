package limiter

import (
	"sync"
	"time"
)

// idleBucketTTL is how long an untouched bucket survives a cleanup sweep
const idleBucketTTL = 5 * time.Minute

// tokenBucket holds the budget of a single client
//
// How it works:
//   - The bucket starts full with burst tokens
//   - Tokens are added continuously at rate per second, capped at burst
//   - Each request consumes 1 token; an empty bucket rejects the request
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

// take refills the bucket for the time elapsed since lastSeen and consumes one token
func (b *tokenBucket) take(now time.Time, rate, burst float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens = min(burst, b.tokens+elapsed*rate)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *tokenBucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen.Before(cutoff)
}

// MemoryLimiter keeps one token bucket per client in process memory
// Suitable for a single server instance.
type MemoryLimiter struct {
	rate    float64
	burst   float64
	buckets sync.Map // key -> *tokenBucket
	now     func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// NewMemoryLimiter creates an in-memory limiter for the given budget
func NewMemoryLimiter(rate Rate) *MemoryLimiter {
	return newMemoryLimiterWithClock(rate, time.Now)
}

func newMemoryLimiterWithClock(rate Rate, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		rate:      rate.PerSecond(),
		burst:     rate.Burst(),
		now:       now,
		lastSweep: now(),
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(key string) bool {
	now := l.now()

	fresh := &tokenBucket{tokens: l.burst, lastSeen: now}
	value, _ := l.buckets.LoadOrStore(key, fresh)
	allowed := value.(*tokenBucket).take(now, l.rate, l.burst)

	l.sweep(now)
	return allowed
}

// sweep drops buckets idle for longer than idleBucketTTL, at most once per TTL
func (l *MemoryLimiter) sweep(now time.Time) {
	l.sweepMu.Lock()
	defer l.sweepMu.Unlock()

	if now.Sub(l.lastSweep) < idleBucketTTL {
		return
	}

	cutoff := now.Add(-idleBucketTTL)
	l.buckets.Range(func(key, value any) bool {
		if value.(*tokenBucket).idleSince(cutoff) {
			l.buckets.Delete(key)
		}
		return true
	})
	l.lastSweep = now
}

// size returns the number of tracked clients
func (l *MemoryLimiter) size() int {
	n := 0
	l.buckets.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Close implements Limiter; there is nothing to release
func (l *MemoryLimiter) Close() error {
	return nil
}
