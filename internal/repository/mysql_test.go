package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
)

func setupMock(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })
	return NewMySQLStore(sqlxDB, zap.NewNop()), mock
}

var spaceCols = []string{"id", "tenant_id", "space_id", "booked_by_user_id", "start_time", "end_time", "total_price_cents", "status", "notes", "created_at"}

func TestCreateLocksSpaceAndInserts(t *testing.T) {
	store, mock := setupMock(t)
	start := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, name FROM spaces WHERE id = ? AND tenant_id = ? FOR UPDATE")).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}).AddRow(7, 1, "Loft"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM space_reservations WHERE tenant_id = ? AND space_id = ? AND status IN (?,?) AND start_time <= ? AND end_time >= ? ORDER BY start_time")).
		WithArgs(1, 7, "PENDING", "CONFIRMED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(spaceCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO space_reservations")).
		WithArgs(1, 7, 3, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(5000), "PENDING", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	res := model.SpaceReservation{TenantID: 1, SpaceID: 7, BookedByUserID: 3, StartTime: start, EndTime: start.Add(2 * time.Hour), TotalPriceCents: 5000, Status: model.StatusPending, CreatedAt: start}
	err := store.Update(context.Background(), func(tx Tx) error {
		space, err := tx.Resources().LockSpace(context.Background(), 1, 7)
		if err != nil {
			return err
		}
		assert.Equal(t, "Loft", space.Name)
		found, err := tx.SpaceReservations().Candidates(context.Background(), 1, 7, res.Window(), 0)
		if err != nil {
			return err
		}
		assert.Empty(t, found)
		return tx.SpaceReservations().Insert(context.Background(), &res)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRollsBackOnDuplicate(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO table_reservations")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := store.Update(context.Background(), func(tx Tx) error {
		return tx.TableReservations().Insert(context.Background(), &model.TableReservation{TenantID: 1, TableID: 2})
	})
	assert.True(t, errors.Is(err, errs.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignTenantIsNotFound(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM space_reservations WHERE id = ? AND tenant_id = ?")).
		WithArgs(10, 2).
		WillReturnRows(sqlmock.NewRows(spaceCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, label, capacity FROM restaurant_tables WHERE id = ? AND tenant_id = ?")).
		WithArgs(5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "label", "capacity"}))

	err := store.View(context.Background(), func(tx Tx) error {
		_, err := tx.SpaceReservations().Get(context.Background(), 2, 10)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		_, err = tx.Resources().GetTable(context.Background(), 2, 5)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockReservationAndUpdateStatus(t *testing.T) {
	store, mock := setupMock(t)
	now := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM table_reservations WHERE id = ? AND tenant_id = ? FOR UPDATE")).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "table_id", "customer_id", "number_of_people", "requested_time", "estimated_arrival_time", "status", "special_requests", "created_at", "updated_at"}).
			AddRow(11, 1, 4, 8, 2, now, now.Add(30*time.Minute), "PENDING", "window seat", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE table_reservations SET number_of_people = ?")).
		WithArgs(2, sqlmock.AnyArg(), sqlmock.AnyArg(), "CONFIRMED", "window seat", sqlmock.AnyArg(), 11, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Update(context.Background(), func(tx Tx) error {
		r, err := tx.TableReservations().Lock(context.Background(), 1, 11)
		if err != nil {
			return err
		}
		assert.Equal(t, model.StatusPending, r.Status)
		r.Status = model.StatusConfirmed
		return tx.TableReservations().Update(context.Background(), r)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRow(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM space_reservations WHERE id = ? AND tenant_id = ?")).
		WithArgs(99, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Update(context.Background(), func(tx Tx) error {
		return tx.SpaceReservations().Delete(context.Background(), 1, 99)
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFiltersAndPaging(t *testing.T) {
	store, mock := setupMock(t)
	from := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM space_reservations WHERE tenant_id = ? AND space_id = ? AND status = ? AND start_time < ? AND (end_time > ? OR (end_time = start_time AND start_time >= ?))")).
		WithArgs(1, 7, "CONFIRMED", to, from, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY start_time, id LIMIT 2 OFFSET 2")).
		WillReturnRows(sqlmock.NewRows(spaceCols).
			AddRow(5, 1, 7, 3, from.Add(time.Hour), from.Add(2*time.Hour), 0, "CONFIRMED", "", from))

	var items []model.SpaceReservation
	var total int
	err := store.View(context.Background(), func(tx Tx) error {
		var err error
		items, total, err = tx.SpaceReservations().List(context.Background(), model.SpaceReservationFilter{
			TenantID:   1,
			SpaceID:    7,
			Status:     model.StatusConfirmed,
			DateRange:  model.DateRange{From: &from, To: &to},
			Pagination: model.Pagination{Page: 2, PageSize: 2},
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(5), items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuePendingTables(t *testing.T) {
	store, mock := setupMock(t)
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM table_reservations WHERE status = ? AND requested_time <= ? ORDER BY requested_time LIMIT 50")).
		WithArgs("PENDING", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "table_id", "customer_id", "number_of_people", "requested_time", "estimated_arrival_time", "status", "special_requests", "created_at", "updated_at"}).
			AddRow(3, 1, 4, 8, 2, now.Add(-time.Hour), now, "PENDING", "", now, now))

	err := store.View(context.Background(), func(tx Tx) error {
		due, err := tx.TableReservations().DuePending(context.Background(), now, 50)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, uint64(3), due[0].ID)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
