package limiter

import (
	"time"
)

// KeyPrefix namespaces every rate limit key stored in Redis
const KeyPrefix = "iss:ratelimit"

// Limiter decides whether a client may make another request
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow reports whether a request from key (usually the client IP) is within budget
	Allow(key string) bool

	// Close releases connections held by the limiter
	Close() error
}

// Rate is a request budget: Requests per Window
type Rate struct {
	Requests int
	Window   time.Duration
}

// PerSecond converts the budget to a refill rate in tokens per second
// A zero or negative window counts as one second.
func (r Rate) PerSecond() float64 {
	window := r.Window
	if window <= 0 {
		window = time.Second
	}
	return float64(r.Requests) / window.Seconds()
}

// Burst is the largest number of back-to-back requests the rate allows
func (r Rate) Burst() float64 {
	if r.Requests < 1 {
		return 1
	}
	return float64(r.Requests)
}

// Unlimited lets every request through
// It backs RATE_LIMITER_TYPE=none, the default.
type Unlimited struct{}

// Allow always returns true
func (Unlimited) Allow(string) bool { return true }

// Close is a no-op
func (Unlimited) Close() error { return nil }
