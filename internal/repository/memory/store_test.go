package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

func TestUpdateIsAllOrNothing(t *testing.T) {
	s := New()
	s.PutSpace(model.Space{ID: 1, TenantID: 1, Name: "Hall"})
	ctx := context.Background()
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx repository.Tx) error {
		r := model.SpaceReservation{TenantID: 1, SpaceID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: model.StatusPending}
		require.NoError(t, tx.SpaceReservations().Insert(ctx, &r))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.View(ctx, func(tx repository.Tx) error {
		items, total, err := tx.SpaceReservations().List(ctx, model.SpaceReservationFilter{TenantID: 1})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
		return nil
	})
}

func TestTenantScopedLookups(t *testing.T) {
	s := New()
	s.PutTable(model.Table{ID: 3, TenantID: 1, Label: "T3", Capacity: 4})
	ctx := context.Background()

	_ = s.View(ctx, func(tx repository.Tx) error {
		_, err := tx.Resources().GetTable(ctx, 2, 3)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		tbl, err := tx.Resources().LockTable(ctx, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, 4, tbl.Capacity)
		return nil
	})
}

func TestCandidatesIgnoreInactiveAndExcluded(t *testing.T) {
	s := New()
	ctx := context.Background()
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	var keep, cancelled model.TableReservation

	require.NoError(t, s.Update(ctx, func(tx repository.Tx) error {
		keep = model.TableReservation{TenantID: 1, TableID: 3, RequestedTime: start, EstimatedArrivalTime: start.Add(time.Hour), Status: model.StatusConfirmed}
		cancelled = model.TableReservation{TenantID: 1, TableID: 3, RequestedTime: start, EstimatedArrivalTime: start.Add(time.Hour), Status: model.StatusCancelled}
		other := model.TableReservation{TenantID: 2, TableID: 3, RequestedTime: start, EstimatedArrivalTime: start.Add(time.Hour), Status: model.StatusPending}
		for _, r := range []*model.TableReservation{&keep, &cancelled, &other} {
			if err := tx.TableReservations().Insert(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))

	_ = s.View(ctx, func(tx repository.Tx) error {
		window := model.NewInterval(start.Add(30*time.Minute), start.Add(2*time.Hour))
		got, err := tx.TableReservations().Candidates(ctx, 1, 3, window, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, keep.ID, got[0].ID)

		got, err = tx.TableReservations().Candidates(ctx, 1, 3, window, keep.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
		return nil
	})
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	r := model.SpaceReservation{TenantID: 1, SpaceID: 1, Status: model.StatusPending, CreatedAt: created}

	require.NoError(t, s.Update(ctx, func(tx repository.Tx) error { return tx.SpaceReservations().Insert(ctx, &r) }))
	r.CreatedAt = created.Add(time.Hour)
	r.Status = model.StatusConfirmed
	require.NoError(t, s.Update(ctx, func(tx repository.Tx) error { return tx.SpaceReservations().Update(ctx, r) }))

	_ = s.View(ctx, func(tx repository.Tx) error {
		got, err := tx.SpaceReservations().Get(ctx, 1, r.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got.CreatedAt)
		assert.Equal(t, model.StatusConfirmed, got.Status)
		return nil
	})
}

func TestDuePendingCapsBatch(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(ctx, func(tx repository.Tx) error {
		for i := 0; i < 5; i++ {
			r := model.SpaceReservation{TenantID: 1, SpaceID: 1, StartTime: now.Add(time.Duration(i-3) * time.Hour), EndTime: now.Add(time.Duration(i-2) * time.Hour), Status: model.StatusPending}
			if err := tx.SpaceReservations().Insert(ctx, &r); err != nil {
				return err
			}
		}
		return nil
	}))
	_ = s.View(ctx, func(tx repository.Tx) error {
		due, err := tx.SpaceReservations().DuePending(ctx, now, 2)
		require.NoError(t, err)
		assert.Len(t, due, 2)
		assert.True(t, due[0].StartTime.Before(due[1].StartTime))
		return nil
	})
}
