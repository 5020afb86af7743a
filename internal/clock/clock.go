// Package clock provides an injectable time source so scheduling logic
// stays deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns a Clock backed by the system time.
func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock that always reports the given instant.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant
}

// Fake is a manually advanced clock for tests. Safe for concurrent use
// so pollers under test can read it while the test advances it.
type Fake struct {
	mu      sync.Mutex
	current time.Time
}

// NewFake creates a Fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{current: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Set moves the fake clock to the given instant.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}
