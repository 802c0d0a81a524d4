// Package clock abstracts time for the engine so numbering, timestamps and
// expiry checks are deterministic under test.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the wall clock in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a test clock pinned to a settable instant.
type Fixed struct {
	Current time.Time
}

// NewFixed pins a clock to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{Current: t}
}

func (f *Fixed) Now() time.Time {
	return f.Current
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
