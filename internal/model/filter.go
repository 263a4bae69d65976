package model

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination selects a 1-based page of results.
type Pagination struct {
	Page     int `query:"page" json:"page"`
	PageSize int `query:"page_size" json:"page_size"`
}

// Normalize clamps the page to >= 1 and the size to [1, MaxPageSize],
// substituting DefaultPageSize when unset.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// DateRange selects reservations whose interval overlaps [From, To).  A nil
// bound leaves that side open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Matches reports whether w overlaps the range.  A point matches when the
// range contains its instant, so listings still show point reservations.
func (d DateRange) Matches(w Interval) bool {
	r := Interval{End: endOfTime}
	if d.From != nil {
		r.Start = *d.From
	}
	if d.To != nil {
		r.End = *d.To
	}
	if w.IsPoint() {
		return r.Contains(w.Start)
	}
	return r.Overlaps(w)
}

var endOfTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// SpaceReservationFilter narrows a tenant's space reservations.  Zero ids
// and an empty status mean "any".
type SpaceReservationFilter struct {
	TenantID uint64
	SpaceID  uint64
	UserID   uint64
	Status   Status
	DateRange
	Pagination
}

// TableReservationFilter narrows a tenant's table reservations.
type TableReservationFilter struct {
	TenantID   uint64
	TableID    uint64
	CustomerID uint64
	Status     Status
	DateRange
	Pagination
}

// Page is one page of a listing together with the unpaged total.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
