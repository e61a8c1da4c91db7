package order

import "time"

// Clock provides the current wall time. Injected so that the store
// hours guard is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
