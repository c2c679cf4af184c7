// Package clock abstracts the wall clock so anything that stamps
// timestamps can be pinned in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// systemClock reads time in UTC so stamped values compare cleanly
// with timestamptz columns regardless of server timezone.
type systemClock struct{}

func NewRealClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock returns a fixed instant until moved explicitly.
type MockClock struct {
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	return c.now
}

func (c *MockClock) Set(t time.Time) {
	c.now = t
}

func (c *MockClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
