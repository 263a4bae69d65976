package model

import "time"

// SpaceReservation books a space for [StartTime, EndTime).
//
// Fields:
//  ID              – primary key identifier.
//  TenantID        – owner tenant; always equals the space's tenant.
//  SpaceID         – space being booked.
//  BookedByUserID  – user who placed the booking.
//  StartTime       – inclusive start of the booking.
//  EndTime         – exclusive end of the booking.
//  TotalPriceCents – agreed price in cents, never negative.
//  Status          – lifecycle state.
//  Notes           – free text attached by staff or the booker.
//  CreatedAt       – creation timestamp, never rewritten.
type SpaceReservation struct {
	ID              uint64    `db:"id" json:"id"`
	TenantID        uint64    `db:"tenant_id" json:"tenant_id"`
	SpaceID         uint64    `db:"space_id" json:"space_id"`
	BookedByUserID  uint64    `db:"booked_by_user_id" json:"booked_by_user_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	TotalPriceCents int64     `db:"total_price_cents" json:"total_price_cents"`
	Status          Status    `db:"status" json:"status"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Window returns the booked interval.
func (r SpaceReservation) Window() Interval { return Interval{Start: r.StartTime, End: r.EndTime} }

// Key returns the reservation id.
func (r SpaceReservation) Key() uint64 { return r.ID }

// CurrentStatus returns the lifecycle state.
func (r SpaceReservation) CurrentStatus() Status { return r.Status }

// TableReservation books a restaurant table between the requested time and
// the estimated arrival time.
type TableReservation struct {
	ID                   uint64    `db:"id" json:"id"`
	TenantID             uint64    `db:"tenant_id" json:"tenant_id"`
	TableID              uint64    `db:"table_id" json:"table_id"`
	CustomerID           uint64    `db:"customer_id" json:"customer_id"`
	NumberOfPeople       int       `db:"number_of_people" json:"number_of_people"`
	RequestedTime        time.Time `db:"requested_time" json:"requested_time"`
	EstimatedArrivalTime time.Time `db:"estimated_arrival_time" json:"estimated_arrival_time"`
	Status               Status    `db:"status" json:"status"`
	SpecialRequests      string    `db:"special_requests" json:"special_requests,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Window returns the interval between requested and estimated arrival time.
func (r TableReservation) Window() Interval {
	return Interval{Start: r.RequestedTime, End: r.EstimatedArrivalTime}
}

// Key returns the reservation id.
func (r TableReservation) Key() uint64 { return r.ID }

// CurrentStatus returns the lifecycle state.
func (r TableReservation) CurrentStatus() Status { return r.Status }

// Booking is the view of a reservation the overlap checker needs.
type Booking interface {
	Key() uint64
	Window() Interval
	CurrentStatus() Status
}
