package model

import "strings"

// Status is the lifecycle state of a reservation.  Both reservation kinds
// share the same vocabulary; REJECTED is only reachable for tables.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// ActiveStatuses are the statuses that block an interval on a resource.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// IsActive reports whether reservations in this status take part in
// overlap checks.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ParseStatus accepts any letter case and returns false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted, StatusExpired:
		return s, true
	}
	return "", false
}

// Action is a trigger that moves a reservation between statuses.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionExpire   Action = "expire"
)

// Actions lists every known trigger.
var Actions = []Action{ActionConfirm, ActionReject, ActionCancel, ActionComplete, ActionExpire}

// ParseAction accepts any letter case and returns false for unknown values.
func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Actions {
		if a == known {
			return a, true
		}
	}
	return "", false
}
