// Package clock abstracts wall-clock time so time-dependent values can be reproduced.
package clock

import "time"

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current time using the system clock.
func (Real) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant. The CLI uses it for --at.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.At
}

// FromMillis converts a Unix millisecond timestamp, as stored in saves, to a time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
