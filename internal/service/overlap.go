package service

import (
	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
)

// conflicting keeps the active candidates whose window overlaps proposed,
// skipping excludeID.  Storage returns a superset; this is where the
// half-open predicate is decided.
func conflicting[T model.Booking](candidates []T, proposed model.Interval, excludeID uint64) []T {
	var out []T
	for _, c := range candidates {
		if excludeID != 0 && c.Key() == excludeID {
			continue
		}
		if !c.CurrentStatus().IsActive() {
			continue
		}
		if c.Window().Overlaps(proposed) {
			out = append(out, c)
		}
	}
	return out
}

func conflictError[T model.Booking](found []T) error {
	ids := make([]uint64, len(found))
	for i, f := range found {
		ids[i] = f.Key()
	}
	return &errs.ConflictError{ReservationIDs: ids}
}
