// Package clock abstracts wall-clock access so claim expiry and SLA
// computations are deterministic under test. Production code passes
// clock.System; tests pass a Fixed clock and advance it explicitly.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System reads the real wall clock in UTC.
var System Clock = systemClock{}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock pinned at the provided instant.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// Set pins the clock to the provided instant.
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now.UTC()
}
