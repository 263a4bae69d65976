package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/lifecycle"
	"github.com/iliyamo/tenant-booking/internal/metrics"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/queue"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

// SpaceReservationService manages bookings of spaces.
type SpaceReservationService struct {
	base
}

func NewSpaceReservationService(store repository.Store, clock Clock, pub EventPublisher, log *zap.Logger) *SpaceReservationService {
	return &SpaceReservationService{base: newBase(queue.KindSpace, store, clock, pub, log)}
}

// CreateSpaceReservation is the input to Create.
type CreateSpaceReservation struct {
	TenantID        uint64
	SpaceID         uint64
	UserID          uint64
	Start           time.Time
	End             time.Time
	TotalPriceCents int64
	Notes           string
}

// SpaceReschedule moves a reservation to Window and optionally replaces its
// notes.
type SpaceReschedule struct {
	Window model.Interval
	Notes  *string
}

func (s *SpaceReservationService) checkConflicts(ctx context.Context, tx repository.Tx, tenantID, spaceID uint64, w model.Interval, excludeID uint64) error {
	candidates, err := tx.SpaceReservations().Candidates(ctx, tenantID, spaceID, w, excludeID)
	if err != nil {
		return err
	}
	if found := conflicting(candidates, w, excludeID); len(found) > 0 {
		return conflictError(found)
	}
	return nil
}

// Create books the space for [Start, End) in status PENDING.
func (s *SpaceReservationService) Create(ctx context.Context, in CreateSpaceReservation) (model.SpaceReservation, error) {
	w := model.NewInterval(in.Start, in.End)
	if err := s.validateCreate(in, w); err != nil {
		return model.SpaceReservation{}, s.fail("create space reservation", in.TenantID, in.SpaceID, err)
	}
	now := s.clock.Now()
	res := model.SpaceReservation{
		TenantID:        in.TenantID,
		SpaceID:         in.SpaceID,
		BookedByUserID:  in.UserID,
		StartTime:       w.Start,
		EndTime:         w.End,
		TotalPriceCents: in.TotalPriceCents,
		Status:          lifecycle.Space.Initial(),
		Notes:           in.Notes,
		CreatedAt:       now,
	}
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		if _, err := resolveSpace(ctx, tx, in.TenantID, in.SpaceID, true); err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, tx, in.TenantID, in.SpaceID, w, 0); err != nil {
			return err
		}
		return tx.SpaceReservations().Insert(ctx, &res)
	})
	if err != nil {
		return model.SpaceReservation{}, s.fail("create space reservation", in.TenantID, in.SpaceID, err)
	}
	metrics.RecordCreated(string(s.kind))
	s.publish(ctx, queue.NewSpaceEvent(queue.EventCreated, res, now))
	return res, nil
}

func (s *SpaceReservationService) validateCreate(in CreateSpaceReservation, w model.Interval) error {
	if err := requireTenant(in.TenantID); err != nil {
		return err
	}
	if in.SpaceID == 0 {
		return errs.Invalid("space_id", "is required")
	}
	if in.UserID == 0 {
		return errs.Invalid("booked_by_user_id", "is required")
	}
	if err := validateSpaceWindow(w); err != nil {
		return err
	}
	if in.TotalPriceCents < 0 {
		return errs.Invalid("total_price_cents", "must not be negative")
	}
	return nil
}

// Get returns the reservation if it belongs to tenantID.
func (s *SpaceReservationService) Get(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error) {
	var res model.SpaceReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		res, err = resolveSpaceReservation(ctx, tx, tenantID, id, false)
		return err
	})
	if err != nil {
		return model.SpaceReservation{}, s.fail("get space reservation", tenantID, id, err)
	}
	return res, nil
}

// Transition applies action through the space lifecycle.
func (s *SpaceReservationService) Transition(ctx context.Context, tenantID, id uint64, action model.Action) (model.SpaceReservation, error) {
	var res model.SpaceReservation
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		if res, err = resolveSpaceReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		dst, err := lifecycle.Space.Next(res.Status, action)
		if err != nil {
			return err
		}
		res.Status = dst
		return tx.SpaceReservations().Update(ctx, res)
	})
	if err != nil {
		return model.SpaceReservation{}, s.fail("transition space reservation", tenantID, id, err)
	}
	metrics.RecordTransition(string(s.kind), string(action), string(res.Status))
	s.publish(ctx, queue.NewSpaceEvent(queue.EventForStatus(res.Status), res, s.clock.Now()))
	return res, nil
}

// Reschedule moves an active reservation to a new interval, re-running the
// overlap check against every other reservation on the space.
func (s *SpaceReservationService) Reschedule(ctx context.Context, tenantID, id uint64, in SpaceReschedule) (model.SpaceReservation, error) {
	w := model.NewInterval(in.Window.Start, in.Window.End)
	if err := requireTenant(tenantID); err != nil {
		return model.SpaceReservation{}, s.fail("reschedule space reservation", tenantID, id, err)
	}
	if err := validateSpaceWindow(w); err != nil {
		return model.SpaceReservation{}, s.fail("reschedule space reservation", tenantID, id, err)
	}
	var res model.SpaceReservation
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		cur, err := resolveSpaceReservation(ctx, tx, tenantID, id, false)
		if err != nil {
			return err
		}
		// Space first, then the row: the same order Create uses.
		if _, err := resolveSpace(ctx, tx, tenantID, cur.SpaceID, true); err != nil {
			return err
		}
		if res, err = resolveSpaceReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		if !res.Status.IsActive() {
			return errs.Invalid("status", "only pending or confirmed reservations can be rescheduled")
		}
		if err := s.checkConflicts(ctx, tx, tenantID, res.SpaceID, w, res.ID); err != nil {
			return err
		}
		res.StartTime, res.EndTime = w.Start, w.End
		if in.Notes != nil {
			res.Notes = *in.Notes
		}
		return tx.SpaceReservations().Update(ctx, res)
	})
	if err != nil {
		return model.SpaceReservation{}, s.fail("reschedule space reservation", tenantID, id, err)
	}
	s.publish(ctx, queue.NewSpaceEvent(queue.EventRescheduled, res, s.clock.Now()))
	return res, nil
}

// Delete removes the reservation permanently.
func (s *SpaceReservationService) Delete(ctx context.Context, tenantID, id uint64) error {
	var res model.SpaceReservation
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		if res, err = resolveSpaceReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		return tx.SpaceReservations().Delete(ctx, tenantID, id)
	})
	if err != nil {
		return s.fail("delete space reservation", tenantID, id, err)
	}
	s.publish(ctx, queue.NewSpaceEvent(queue.EventDeleted, res, s.clock.Now()))
	return nil
}

// List returns one page of the tenant's reservations matching f.
func (s *SpaceReservationService) List(ctx context.Context, f model.SpaceReservationFilter) (model.Page[model.SpaceReservation], error) {
	if err := requireTenant(f.TenantID); err != nil {
		return model.Page[model.SpaceReservation]{}, s.fail("list space reservations", f.TenantID, 0, err)
	}
	f.Pagination = f.Pagination.Normalize()
	page := model.Page[model.SpaceReservation]{Page: f.Page, PageSize: f.PageSize}
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		page.Items, page.Total, err = tx.SpaceReservations().List(ctx, f)
		return err
	})
	if err != nil {
		return model.Page[model.SpaceReservation]{}, s.fail("list space reservations", f.TenantID, 0, err)
	}
	return page, nil
}

// FindConflicts returns the active reservations on the space that overlap
// w, ignoring excludeID.
func (s *SpaceReservationService) FindConflicts(ctx context.Context, tenantID, spaceID uint64, w model.Interval, excludeID uint64) ([]model.SpaceReservation, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, s.fail("find space conflicts", tenantID, spaceID, err)
	}
	if err := validateSpaceWindow(w); err != nil {
		return nil, s.fail("find space conflicts", tenantID, spaceID, err)
	}
	var found []model.SpaceReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		if _, err := resolveSpace(ctx, tx, tenantID, spaceID, false); err != nil {
			return err
		}
		candidates, err := tx.SpaceReservations().Candidates(ctx, tenantID, spaceID, w, excludeID)
		if err != nil {
			return err
		}
		found = conflicting(candidates, w, excludeID)
		return nil
	})
	if err != nil {
		return nil, s.fail("find space conflicts", tenantID, spaceID, err)
	}
	return found, nil
}

// HasOverlap reports whether [start, end) collides with an active booking.
func (s *SpaceReservationService) HasOverlap(ctx context.Context, tenantID, spaceID uint64, start, end time.Time) (bool, error) {
	found, err := s.FindConflicts(ctx, tenantID, spaceID, model.NewInterval(start, end), 0)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// DuePending lists pending reservations across tenants whose start has
// passed.
func (s *SpaceReservationService) DuePending(ctx context.Context, limit int) ([]model.SpaceReservation, error) {
	var due []model.SpaceReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		due, err = tx.SpaceReservations().DuePending(ctx, s.clock.Now(), limit)
		return err
	})
	return due, err
}
