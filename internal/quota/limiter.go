package quota

import (
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the per-identity request budget per window.
	DefaultMaxRequests = 10
	// DefaultWindow is the trailing duration the budget applies to.
	DefaultWindow = 24 * time.Hour
)

// Limiter enforces a per-identity sliding-window request quota. Only requests
// inside the trailing window count; pruning happens identically on every
// accessor so reads and admission checks observe the same live count.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time
}

// NewLimiter builds a limiter. Non-positive arguments fall back to the
// defaults (10 requests per 24 hours).
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// MaxRequests returns the configured per-window budget.
func (l *Limiter) MaxRequests() int { return l.maxRequests }

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow reports whether identity may submit another request at now, recording
// the request when admitted. A denied call records nothing.
func (l *Limiter) Allow(identity string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.prune(identity, now)
	if len(live) >= l.maxRequests {
		return false
	}
	l.requests[identity] = append(live, now)
	return true
}

// Remaining returns how many admissions identity has left at now. Never
// negative.
func (l *Limiter) Remaining(identity string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.maxRequests - len(l.prune(identity, now))
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResetAt returns when the oldest live request for identity leaves the
// window, or false when the identity has no live requests.
func (l *Limiter) ResetAt(identity string, now time.Time) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.prune(identity, now)
	if len(live) == 0 {
		return time.Time{}, false
	}
	return live[0].Add(l.window), true
}

// prune drops timestamps outside the window and stores the survivors.
// Callers must hold mu.
func (l *Limiter) prune(identity string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	live := l.requests[identity]
	for len(live) > 0 && live[0].Before(cutoff) {
		live = live[1:]
	}
	if len(live) == 0 {
		delete(l.requests, identity)
		return nil
	}
	l.requests[identity] = live
	return live
}
