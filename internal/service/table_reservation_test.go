package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/lifecycle"
	"github.com/iliyamo/tenant-booking/internal/model"
)

func TestTableCompleteRequiresConfirm(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.tables.Create(ctx, f.table(at(19, 0), at(19, 30)))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)

	_, err = f.tables.Transition(ctx, tenantA, r.ID, model.ActionComplete)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = f.tables.Transition(ctx, tenantA, r.ID, model.ActionConfirm)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	done, err := f.tables.Transition(ctx, tenantA, r.ID, model.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, at(9, 0), done.UpdatedAt)
	assert.Equal(t, at(8, 0), done.CreatedAt)
}

func TestTablePastRequestRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tables.Create(ctx, f.table(at(7, 0), at(7, 30)))
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "requested_time", ve.Field)

	page, err := f.tables.List(ctx, model.TableReservationFilter{TenantID: tenantA})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "no row written")
}

func TestTableCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*CreateTableReservation)
		field string
	}{
		{"arrival before request", func(in *CreateTableReservation) { in.EstimatedArrivalTime = in.RequestedTime.Add(-time.Minute) }, "estimated_arrival_time"},
		{"no people", func(in *CreateTableReservation) { in.NumberOfPeople = 0 }, "number_of_people"},
		{"over capacity", func(in *CreateTableReservation) { in.NumberOfPeople = 5 }, "number_of_people"},
		{"missing customer", func(in *CreateTableReservation) { in.CustomerID = 0 }, "customer_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := f.table(at(19, 0), at(19, 30))
			tt.edit(&in)
			_, err := f.tables.Create(context.Background(), in)
			var ve *errs.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestTableRequestAtNowAllowed(t *testing.T) {
	f := newFixture()
	_, err := f.tables.Create(context.Background(), f.table(at(8, 0), at(8, 0)))
	assert.NoError(t, err)
}

func TestTablePointReservationsNeverConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.tables.Create(ctx, f.table(at(19, 0), at(19, 0)))
	require.NoError(t, err)

	_, err = f.tables.Create(ctx, f.table(at(19, 0), at(19, 0)))
	assert.NoError(t, err, "same instant")

	_, err = f.tables.Create(ctx, f.table(at(19, 0), at(20, 0)))
	assert.NoError(t, err, "window starting at the point")

	_, err = f.tables.Create(ctx, f.table(at(19, 30), at(19, 30)))
	assert.NoError(t, err, "point inside an existing window")

	_, err = f.tables.Create(ctx, f.table(at(19, 15), at(19, 45)))
	assert.ErrorIs(t, err, errs.ErrConflict, "windows still conflict with each other")

	overlap, err := f.tables.HasOverlap(ctx, tenantA, tableX, at(19, 0), at(19, 0))
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestTableRejectAndConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.tables.Create(ctx, f.table(at(20, 0), at(20, 15)))
	require.NoError(t, err)

	overlap, err := f.tables.HasOverlap(ctx, tenantA, tableX, at(20, 10), at(20, 20))
	require.NoError(t, err)
	assert.True(t, overlap)

	_, err = f.tables.Transition(ctx, tenantA, r.ID, model.ActionReject)
	require.NoError(t, err)

	overlap, err = f.tables.HasOverlap(ctx, tenantA, tableX, at(20, 10), at(20, 20))
	require.NoError(t, err)
	assert.False(t, overlap, "rejected reservations do not block")

	found, err := f.tables.FindConflicts(ctx, tenantA, tableX, model.NewInterval(at(20, 0), at(21, 0)), 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTableFindConflictsRejectsInvertedWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.tables.Create(ctx, f.table(at(19, 0), at(19, 30)))
	require.NoError(t, err)

	found, err := f.tables.FindConflicts(ctx, tenantA, tableX, model.NewInterval(at(19, 30), at(19, 0)), 0)
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Nil(t, found)

	_, err = f.tables.FindConflicts(ctx, tenantA, tableX, model.NewInterval(at(6, 0), at(7, 0)), 0)
	assert.NoError(t, err, "past windows are fine for lookups")
}

func TestTableHasOverlapNamesMissingField(t *testing.T) {
	tests := []struct {
		name               string
		requested, arrival time.Time
		field              string
	}{
		{"missing requested", time.Time{}, at(19, 0), "requested_time"},
		{"missing arrival", at(19, 0), time.Time{}, "estimated_arrival_time"},
		{"arrival before request", at(19, 0), at(18, 0), "estimated_arrival_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.tables.HasOverlap(context.Background(), tenantA, tableX, tt.requested, tt.arrival)
			var ve *errs.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestTableEveryListedTransitionSucceedsOnce(t *testing.T) {
	for _, tr := range lifecycle.TableTransitions {
		t.Run(string(tr.Src)+"_"+string(tr.Action), func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			r, err := f.tables.Create(ctx, f.table(at(19, 0), at(19, 30)))
			require.NoError(t, err)
			if tr.Src == model.StatusConfirmed {
				_, err = f.tables.Transition(ctx, tenantA, r.ID, model.ActionConfirm)
				require.NoError(t, err)
			}

			got, err := f.tables.Transition(ctx, tenantA, r.ID, tr.Action)
			require.NoError(t, err)
			assert.Equal(t, tr.Dst, got.Status)

			_, err = f.tables.Transition(ctx, tenantA, r.ID, tr.Action)
			assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		})
	}
}

func TestTableTenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.tables.Create(ctx, f.table(at(19, 0), at(19, 30)))
	require.NoError(t, err)

	_, err = f.tables.Get(ctx, tenantB, r.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.tables.Transition(ctx, tenantB, r.ID, model.ActionConfirm)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, f.tables.Delete(ctx, tenantB, r.ID), errs.ErrNotFound)

	in := f.table(at(19, 0), at(19, 30))
	in.TableID = tableY
	_, err = f.tables.Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTableReschedule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.tables.Create(ctx, f.table(at(18, 0), at(18, 30)))
	require.NoError(t, err)
	_, err = f.tables.Create(ctx, f.table(at(19, 0), at(19, 30)))
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	note := "birthday"
	moved, err := f.tables.Reschedule(ctx, tenantA, a.ID, TableReschedule{
		Window:          model.NewInterval(at(18, 15), at(19, 0)),
		NumberOfPeople:  4,
		SpecialRequests: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, moved.NumberOfPeople)
	assert.Equal(t, note, moved.SpecialRequests)
	assert.Equal(t, at(8, 10), moved.UpdatedAt)
	assert.Equal(t, a.CreatedAt, moved.CreatedAt)

	_, err = f.tables.Reschedule(ctx, tenantA, a.ID, TableReschedule{Window: model.NewInterval(at(18, 45), at(19, 15))})
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = f.tables.Reschedule(ctx, tenantA, a.ID, TableReschedule{Window: model.NewInterval(at(7, 0), at(7, 30))})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.tables.Reschedule(ctx, tenantA, a.ID, TableReschedule{Window: model.NewInterval(at(21, 0), at(21, 30)), NumberOfPeople: 9})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestTableDuePending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.tables.Create(ctx, f.table(at(9, 0), at(9, 30)))
	require.NoError(t, err)
	_, err = f.tables.Create(ctx, f.table(at(12, 0), at(12, 30)))
	require.NoError(t, err)

	f.clock.Advance(90 * time.Minute)
	due, err := f.tables.DuePending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, r.ID, due[0].ID)

	expired, err := f.tables.Transition(ctx, tenantA, r.ID, model.ActionExpire)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, expired.Status)
}
