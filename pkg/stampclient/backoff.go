package stampclient

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Login attempts are free until failureThreshold failures accumulate inside
// resetWindow; past that, each further failure doubles the wait, capped at
// maxBackoff. This is advisory throttling only; the server enforces its own
// limit.
const (
	failureThreshold = 5
	resetWindow      = 5 * time.Minute
	maxBackoff       = time.Hour
)

// RateLimitError is returned when a login attempt is made before the
// current backoff window has passed.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("stampclient: too many login attempts, retry after %s", e.RetryAfter)
}

// attemptTracker counts recent login failures and computes the wait before
// the next attempt is allowed.
type attemptTracker struct {
	clock clockwork.Clock

	mu       sync.Mutex
	failures int
	lastFail time.Time
}

func newAttemptTracker(clock clockwork.Clock) *attemptTracker {
	return &attemptTracker{clock: clock}
}

// RecordFailure notes a failed attempt, restarting the count when the last
// failure is older than the reset window.
func (t *attemptTracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if !t.lastFail.IsZero() && now.Sub(t.lastFail) > resetWindow {
		t.failures = 0
	}
	t.failures++
	t.lastFail = now
}

// Reset clears the failure count after a successful login.
func (t *attemptTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = 0
	t.lastFail = time.Time{}
}

// Wait returns how long the caller must still wait before the next attempt,
// or zero when an attempt is allowed now.
func (t *attemptTracker) Wait() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failures < failureThreshold {
		return 0
	}
	now := t.clock.Now()
	if now.Sub(t.lastFail) > resetWindow {
		return 0
	}

	// 2, 4, 8, ... minutes past the threshold, capped at an hour.
	backoff := maxBackoff
	if shift := uint(t.failures - failureThreshold + 1); shift < 6 {
		backoff = time.Duration(1<<shift) * time.Minute
	}
	remaining := backoff - now.Sub(t.lastFail)
	if remaining < 0 {
		return 0
	}
	return remaining
}
