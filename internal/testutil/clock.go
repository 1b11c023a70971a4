package testutil

import "time"

// FixedClock always returns T. Use when run timestamps must be
// deterministic.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
