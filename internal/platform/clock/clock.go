// Package clock abstracts the current time so ledger operations can be tested deterministically.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// System is the wall clock
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }
