// Package queue defines the reservation events exchanged over the message
// broker, the publishers that emit them and the audit consumer that records
// them.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tenant-booking/internal/model"
)

// Kind tells which reservation family an event belongs to.
type Kind string

const (
	KindSpace Kind = "space"
	KindTable Kind = "table"
)

// EventType names what happened to the reservation.
type EventType string

const (
	EventCreated     EventType = "created"
	EventRescheduled EventType = "rescheduled"
	EventConfirmed   EventType = "confirmed"
	EventRejected    EventType = "rejected"
	EventCancelled   EventType = "cancelled"
	EventCompleted   EventType = "completed"
	EventExpired     EventType = "expired"
	EventDeleted     EventType = "deleted"
)

// EventForStatus maps the destination of a transition to its event type.
func EventForStatus(s model.Status) EventType {
	switch s {
	case model.StatusConfirmed:
		return EventConfirmed
	case model.StatusRejected:
		return EventRejected
	case model.StatusCancelled:
		return EventCancelled
	case model.StatusCompleted:
		return EventCompleted
	case model.StatusExpired:
		return EventExpired
	}
	return EventType("status_" + string(s))
}

// ReservationEvent is published after a reservation change is committed.  It
// carries enough for consumers to log or notify without reading the
// primary database.
type ReservationEvent struct {
	ID            string       `json:"id"`
	Kind          Kind         `json:"kind"`
	Type          EventType    `json:"type"`
	TenantID      uint64       `json:"tenant_id"`
	ReservationID uint64       `json:"reservation_id"`
	ResourceID    uint64       `json:"resource_id"`
	Status        model.Status `json:"status"`
	Start         time.Time    `json:"start"`
	End           time.Time    `json:"end"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// NewSpaceEvent describes a change to a space reservation.
func NewSpaceEvent(t EventType, r model.SpaceReservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.NewString(),
		Kind:          KindSpace,
		Type:          t,
		TenantID:      r.TenantID,
		ReservationID: r.ID,
		ResourceID:    r.SpaceID,
		Status:        r.Status,
		Start:         r.StartTime,
		End:           r.EndTime,
		OccurredAt:    at,
	}
}

// NewTableEvent describes a change to a table reservation.
func NewTableEvent(t EventType, r model.TableReservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.NewString(),
		Kind:          KindTable,
		Type:          t,
		TenantID:      r.TenantID,
		ReservationID: r.ID,
		ResourceID:    r.TableID,
		Status:        r.Status,
		Start:         r.RequestedTime,
		End:           r.EstimatedArrivalTime,
		OccurredAt:    at,
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
	Close() error
}

// Nop discards every event.  It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ReservationEvent) error { return nil }
func (Nop) Close() error                                     { return nil }
