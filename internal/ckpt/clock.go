package ckpt

import "time"

// Clock abstracts time retrieval so orchestration logic is deterministic in
// tests. Restore-point ids and retention math both go through it.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
