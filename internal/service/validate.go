package service

import (
	"time"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
)

func validateSpaceWindow(w model.Interval) error {
	if err := requireTime("start_time", w.Start); err != nil {
		return err
	}
	if err := requireTime("end_time", w.End); err != nil {
		return err
	}
	if !w.End.After(w.Start) {
		return errs.Invalid("end_time", "must be after start_time")
	}
	return nil
}

// validateTableWindow rejects a requested time in the past and an arrival
// before the requested time.  An arrival equal to the request is allowed.
func validateTableWindow(w model.Interval, now time.Time) error {
	if err := requireTime("requested_time", w.Start); err != nil {
		return err
	}
	if w.Start.Before(now) {
		return errs.Invalid("requested_time", "must not be in the past")
	}
	return validateTableOrder(w)
}

// validateTableOrder checks a table window without the past-time rule, for
// read-only conflict lookups.
func validateTableOrder(w model.Interval) error {
	if err := requireTime("requested_time", w.Start); err != nil {
		return err
	}
	if err := requireTime("estimated_arrival_time", w.End); err != nil {
		return err
	}
	if w.End.Before(w.Start) {
		return errs.Invalid("estimated_arrival_time", "must not be before requested_time")
	}
	return nil
}

func requireTime(field string, t time.Time) error {
	if t.IsZero() {
		return errs.Invalid(field, "is required")
	}
	return nil
}

func validateParty(people int) error {
	if people < 1 {
		return errs.Invalid("number_of_people", "must be at least 1")
	}
	return nil
}

func validateCapacity(people int, t model.Table) error {
	if t.Capacity > 0 && people > t.Capacity {
		return errs.Invalid("number_of_people", "exceeds table capacity")
	}
	return nil
}
