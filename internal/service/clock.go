package service

import "time"

// Clock supplies "now" to validation and expiry.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC at the precision MySQL DATETIME(6)
// stores.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
