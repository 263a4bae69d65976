package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time { return time.Date(2030, 1, 1, h, m, 0, 0, time.UTC) }

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"contained", Interval{at(10, 0), at(12, 0)}, Interval{at(10, 30), at(11, 0)}, true},
		{"partial", Interval{at(10, 0), at(12, 0)}, Interval{at(11, 0), at(13, 0)}, true},
		{"touching after", Interval{at(10, 0), at(12, 0)}, Interval{at(12, 0), at(13, 0)}, false},
		{"touching before", Interval{at(12, 0), at(13, 0)}, Interval{at(10, 0), at(12, 0)}, false},
		{"disjoint", Interval{at(8, 0), at(9, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"identical", Interval{at(8, 0), at(9, 0)}, Interval{at(8, 0), at(9, 0)}, true},
		{"point at start", Interval{at(10, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"point at end", Interval{at(11, 0), at(11, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"point inside", Interval{at(10, 0), at(12, 0)}, Interval{at(11, 0), at(11, 0)}, false},
		{"same points", Interval{at(9, 0), at(9, 0)}, Interval{at(9, 0), at(9, 0)}, false},
		{"different points", Interval{at(9, 0), at(9, 0)}, Interval{at(9, 1), at(9, 1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestDateRangeMatches(t *testing.T) {
	from, to := at(10, 0), at(12, 0)
	r := DateRange{From: &from, To: &to}
	assert.True(t, r.Matches(Interval{at(9, 0), at(10, 30)}))
	assert.False(t, r.Matches(Interval{at(9, 0), at(10, 0)}))
	assert.False(t, r.Matches(Interval{at(12, 0), at(13, 0)}))
	assert.True(t, DateRange{From: &from}.Matches(Interval{at(20, 0), at(21, 0)}))
	assert.True(t, DateRange{}.Matches(Interval{at(1, 0), at(1, 0)}))
	assert.True(t, r.Matches(Interval{at(10, 0), at(10, 0)}), "point at range start is listed")
	assert.False(t, r.Matches(Interval{at(12, 0), at(12, 0)}), "point at range end is not")
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, Pagination{Page: 1, PageSize: DefaultPageSize}, p)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{Page: 3, PageSize: 500}.Normalize()
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestParseActionAndStatus(t *testing.T) {
	a, ok := ParseAction(" Confirm ")
	assert.True(t, ok)
	assert.Equal(t, ActionConfirm, a)
	_, ok = ParseAction("approve")
	assert.False(t, ok)

	s, ok := ParseStatus("cancelled")
	assert.True(t, ok)
	assert.Equal(t, StatusCancelled, s)
	assert.False(t, s.IsActive())
	assert.True(t, StatusPending.IsActive())
}
