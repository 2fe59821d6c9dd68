// Package clock provides an injectable time source so that business-hour,
// quota and cancellation checks stay deterministic under test.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Real reads the process clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }
