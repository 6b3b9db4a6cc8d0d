package testing

import (
	"sync"
	"time"
)

// Epoch is the instant every FakeClock starts at.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is virtual time measured from Epoch. It only moves when told to.
// Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	elapsed time.Duration
}

// NewFakeClock returns a clock reading Epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

// Now returns the current virtual instant.
func (c *FakeClock) Now() time.Time {
	return Epoch.Add(c.Since())
}

// Since returns how far the clock has moved past Epoch.
func (c *FakeClock) Since() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *FakeClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.elapsed += d
	c.mu.Unlock()
}

// Set moves the clock to t. Instants before Epoch read as Epoch.
func (c *FakeClock) Set(t time.Time) {
	d := t.Sub(Epoch)
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.elapsed = d
	c.mu.Unlock()
}
