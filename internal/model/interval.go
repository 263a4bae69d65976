package model

import "time"

// Interval is a half-open time range [Start, End).  Two intervals that only
// touch (one ends exactly where the other starts) do not overlap.
//
// A zero-length interval (Start == End) is a point in time.  Table
// reservations whose estimated arrival equals the requested time produce
// such a point.  Points never overlap anything, including each other.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval normalises both bounds to UTC.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// IsPoint reports whether the interval has zero length.
func (i Interval) IsPoint() bool { return i.Start.Equal(i.End) }

// Duration returns End - Start.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Contains reports whether t lies inside [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps implements a.Start < b.End && b.Start < a.End with no special
// case for points.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}
