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

// TableReservationService manages restaurant table bookings.  The booked
// window runs from the requested time to the estimated arrival time.
type TableReservationService struct {
	base
}

func NewTableReservationService(store repository.Store, clock Clock, pub EventPublisher, log *zap.Logger) *TableReservationService {
	return &TableReservationService{base: newBase(queue.KindTable, store, clock, pub, log)}
}

// CreateTableReservation is the input to Create.
type CreateTableReservation struct {
	TenantID             uint64
	TableID              uint64
	CustomerID           uint64
	NumberOfPeople       int
	RequestedTime        time.Time
	EstimatedArrivalTime time.Time
	SpecialRequests      string
}

// TableReschedule moves a reservation to Window.  A zero NumberOfPeople
// keeps the current party size and a nil SpecialRequests keeps the notes.
type TableReschedule struct {
	Window          model.Interval
	NumberOfPeople  int
	SpecialRequests *string
}

func (s *TableReservationService) checkConflicts(ctx context.Context, tx repository.Tx, tenantID, tableID uint64, w model.Interval, excludeID uint64) error {
	candidates, err := tx.TableReservations().Candidates(ctx, tenantID, tableID, w, excludeID)
	if err != nil {
		return err
	}
	if found := conflicting(candidates, w, excludeID); len(found) > 0 {
		return conflictError(found)
	}
	return nil
}

// Create books the table in status PENDING.  The requested time may not be
// in the past and the arrival may not precede it; both are checked before
// storage is queried.
func (s *TableReservationService) Create(ctx context.Context, in CreateTableReservation) (model.TableReservation, error) {
	now := s.clock.Now()
	w := model.NewInterval(in.RequestedTime, in.EstimatedArrivalTime)
	if err := s.validateCreate(in, w, now); err != nil {
		return model.TableReservation{}, s.fail("create table reservation", in.TenantID, in.TableID, err)
	}
	res := model.TableReservation{
		TenantID:             in.TenantID,
		TableID:              in.TableID,
		CustomerID:           in.CustomerID,
		NumberOfPeople:       in.NumberOfPeople,
		RequestedTime:        w.Start,
		EstimatedArrivalTime: w.End,
		Status:               lifecycle.Table.Initial(),
		SpecialRequests:      in.SpecialRequests,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		table, err := resolveTable(ctx, tx, in.TenantID, in.TableID, true)
		if err != nil {
			return err
		}
		if err := validateCapacity(in.NumberOfPeople, table); err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, tx, in.TenantID, in.TableID, w, 0); err != nil {
			return err
		}
		return tx.TableReservations().Insert(ctx, &res)
	})
	if err != nil {
		return model.TableReservation{}, s.fail("create table reservation", in.TenantID, in.TableID, err)
	}
	metrics.RecordCreated(string(s.kind))
	s.publish(ctx, queue.NewTableEvent(queue.EventCreated, res, now))
	return res, nil
}

func (s *TableReservationService) validateCreate(in CreateTableReservation, w model.Interval, now time.Time) error {
	if err := requireTenant(in.TenantID); err != nil {
		return err
	}
	if in.TableID == 0 {
		return errs.Invalid("table_id", "is required")
	}
	if in.CustomerID == 0 {
		return errs.Invalid("customer_id", "is required")
	}
	if err := validateParty(in.NumberOfPeople); err != nil {
		return err
	}
	return validateTableWindow(w, now)
}

// Get returns the reservation if it belongs to tenantID.
func (s *TableReservationService) Get(ctx context.Context, tenantID, id uint64) (model.TableReservation, error) {
	var res model.TableReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		res, err = resolveTableReservation(ctx, tx, tenantID, id, false)
		return err
	})
	if err != nil {
		return model.TableReservation{}, s.fail("get table reservation", tenantID, id, err)
	}
	return res, nil
}

// Transition applies action through the table lifecycle.
func (s *TableReservationService) Transition(ctx context.Context, tenantID, id uint64, action model.Action) (model.TableReservation, error) {
	var res model.TableReservation
	now := s.clock.Now()
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		if res, err = resolveTableReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		dst, err := lifecycle.Table.Next(res.Status, action)
		if err != nil {
			return err
		}
		res.Status = dst
		res.UpdatedAt = now
		return tx.TableReservations().Update(ctx, res)
	})
	if err != nil {
		return model.TableReservation{}, s.fail("transition table reservation", tenantID, id, err)
	}
	metrics.RecordTransition(string(s.kind), string(action), string(res.Status))
	s.publish(ctx, queue.NewTableEvent(queue.EventForStatus(res.Status), res, now))
	return res, nil
}

// Reschedule moves an active reservation, re-running the time, capacity and
// overlap checks.
func (s *TableReservationService) Reschedule(ctx context.Context, tenantID, id uint64, in TableReschedule) (model.TableReservation, error) {
	now := s.clock.Now()
	w := model.NewInterval(in.Window.Start, in.Window.End)
	if err := requireTenant(tenantID); err != nil {
		return model.TableReservation{}, s.fail("reschedule table reservation", tenantID, id, err)
	}
	if err := validateTableWindow(w, now); err != nil {
		return model.TableReservation{}, s.fail("reschedule table reservation", tenantID, id, err)
	}
	if in.NumberOfPeople < 0 {
		return model.TableReservation{}, s.fail("reschedule table reservation", tenantID, id, validateParty(in.NumberOfPeople))
	}
	var res model.TableReservation
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		cur, err := resolveTableReservation(ctx, tx, tenantID, id, false)
		if err != nil {
			return err
		}
		table, err := resolveTable(ctx, tx, tenantID, cur.TableID, true)
		if err != nil {
			return err
		}
		if res, err = resolveTableReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		if !res.Status.IsActive() {
			return errs.Invalid("status", "only pending or confirmed reservations can be rescheduled")
		}
		if in.NumberOfPeople > 0 {
			res.NumberOfPeople = in.NumberOfPeople
		}
		if err := validateCapacity(res.NumberOfPeople, table); err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, tx, tenantID, res.TableID, w, res.ID); err != nil {
			return err
		}
		res.RequestedTime, res.EstimatedArrivalTime = w.Start, w.End
		if in.SpecialRequests != nil {
			res.SpecialRequests = *in.SpecialRequests
		}
		res.UpdatedAt = now
		return tx.TableReservations().Update(ctx, res)
	})
	if err != nil {
		return model.TableReservation{}, s.fail("reschedule table reservation", tenantID, id, err)
	}
	s.publish(ctx, queue.NewTableEvent(queue.EventRescheduled, res, now))
	return res, nil
}

// Delete removes the reservation permanently.
func (s *TableReservationService) Delete(ctx context.Context, tenantID, id uint64) error {
	var res model.TableReservation
	err := s.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		if res, err = resolveTableReservation(ctx, tx, tenantID, id, true); err != nil {
			return err
		}
		return tx.TableReservations().Delete(ctx, tenantID, id)
	})
	if err != nil {
		return s.fail("delete table reservation", tenantID, id, err)
	}
	s.publish(ctx, queue.NewTableEvent(queue.EventDeleted, res, s.clock.Now()))
	return nil
}

// List returns one page of the tenant's reservations matching f.
func (s *TableReservationService) List(ctx context.Context, f model.TableReservationFilter) (model.Page[model.TableReservation], error) {
	if err := requireTenant(f.TenantID); err != nil {
		return model.Page[model.TableReservation]{}, s.fail("list table reservations", f.TenantID, 0, err)
	}
	f.Pagination = f.Pagination.Normalize()
	page := model.Page[model.TableReservation]{Page: f.Page, PageSize: f.PageSize}
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		page.Items, page.Total, err = tx.TableReservations().List(ctx, f)
		return err
	})
	if err != nil {
		return model.Page[model.TableReservation]{}, s.fail("list table reservations", f.TenantID, 0, err)
	}
	return page, nil
}

// FindConflicts returns the active reservations on the table that overlap
// w, ignoring excludeID.
func (s *TableReservationService) FindConflicts(ctx context.Context, tenantID, tableID uint64, w model.Interval, excludeID uint64) ([]model.TableReservation, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, s.fail("find table conflicts", tenantID, tableID, err)
	}
	if err := validateTableOrder(w); err != nil {
		return nil, s.fail("find table conflicts", tenantID, tableID, err)
	}
	var found []model.TableReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		if _, err := resolveTable(ctx, tx, tenantID, tableID, false); err != nil {
			return err
		}
		candidates, err := tx.TableReservations().Candidates(ctx, tenantID, tableID, w, excludeID)
		if err != nil {
			return err
		}
		found = conflicting(candidates, w, excludeID)
		return nil
	})
	if err != nil {
		return nil, s.fail("find table conflicts", tenantID, tableID, err)
	}
	return found, nil
}

// HasOverlap reports whether the window from requested to arrival collides
// with an active booking.  Unlike Create it accepts windows in the past.
func (s *TableReservationService) HasOverlap(ctx context.Context, tenantID, tableID uint64, requested, arrival time.Time) (bool, error) {
	found, err := s.FindConflicts(ctx, tenantID, tableID, model.NewInterval(requested, arrival), 0)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// DuePending lists pending reservations across tenants whose requested time
// has passed.
func (s *TableReservationService) DuePending(ctx context.Context, limit int) ([]model.TableReservation, error) {
	var due []model.TableReservation
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		due, err = tx.TableReservations().DuePending(ctx, s.clock.Now(), limit)
		return err
	})
	return due, err
}
