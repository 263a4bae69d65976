package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/iliyamo/tenant-booking/internal/model"
)

type tableReservationRepo struct {
	q queryer
}

var tableReservationColumns = []string{
	"id", "tenant_id", "table_id", "customer_id", "number_of_people", "requested_time",
	"estimated_arrival_time", "status", "special_requests", "created_at", "updated_at",
}

func (r tableReservationRepo) Insert(ctx context.Context, res *model.TableReservation) error {
	const q = `INSERT INTO table_reservations
        (tenant_id, table_id, customer_id, number_of_people, requested_time, estimated_arrival_time,
         status, special_requests, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q,
		res.TenantID, res.TableID, res.CustomerID, res.NumberOfPeople, res.RequestedTime,
		res.EstimatedArrivalTime, string(res.Status), res.SpecialRequests, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

func (r tableReservationRepo) get(ctx context.Context, tenantID, id uint64, lock bool) (model.TableReservation, error) {
	b := psql.Select(tableReservationColumns...).
		From("table_reservations").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"tenant_id": tenantID})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return model.TableReservation{}, err
	}
	var out model.TableReservation
	return out, translate(r.q.GetContext(ctx, &out, query, args...))
}

func (r tableReservationRepo) Get(ctx context.Context, tenantID, id uint64) (model.TableReservation, error) {
	return r.get(ctx, tenantID, id, false)
}

func (r tableReservationRepo) Lock(ctx context.Context, tenantID, id uint64) (model.TableReservation, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r tableReservationRepo) Candidates(ctx context.Context, tenantID, tableID uint64, window model.Interval, excludeID uint64) ([]model.TableReservation, error) {
	b := psql.Select(tableReservationColumns...).
		From("table_reservations").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"table_id": tableID}).
		Where(sq.Eq{"status": activeStatuses()}).
		Where("requested_time <= ?", window.End).
		Where("estimated_arrival_time >= ?", window.Start)
	if excludeID != 0 {
		b = b.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := b.OrderBy("requested_time").ToSql()
	if err != nil {
		return nil, err
	}
	var out []model.TableReservation
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errors.Wrap(err, "table candidates")
	}
	return out, nil
}

func (r tableReservationRepo) Update(ctx context.Context, res model.TableReservation) error {
	const q = `UPDATE table_reservations
        SET number_of_people = ?, requested_time = ?, estimated_arrival_time = ?, status = ?,
            special_requests = ?, updated_at = ?
        WHERE id = ? AND tenant_id = ?`
	return expectOne(r.q.ExecContext(ctx, q,
		res.NumberOfPeople, res.RequestedTime, res.EstimatedArrivalTime, string(res.Status),
		res.SpecialRequests, res.UpdatedAt, res.ID, res.TenantID))
}

func (r tableReservationRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	const q = `DELETE FROM table_reservations WHERE id = ? AND tenant_id = ?`
	return expectOne(r.q.ExecContext(ctx, q, id, tenantID))
}

func tableFilter(b sq.SelectBuilder, f model.TableReservationFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"tenant_id": f.TenantID})
	if f.TableID != 0 {
		b = b.Where(sq.Eq{"table_id": f.TableID})
	}
	if f.CustomerID != 0 {
		b = b.Where(sq.Eq{"customer_id": f.CustomerID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	return dateRange(b, f.DateRange, "requested_time", "estimated_arrival_time")
}

func (r tableReservationRepo) List(ctx context.Context, f model.TableReservationFilter) ([]model.TableReservation, int, error) {
	p := f.Pagination.Normalize()

	countQ, countArgs, err := tableFilter(psql.Select("COUNT(*)").From("table_reservations"), f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.GetContext(ctx, &total, countQ, countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "count table reservations")
	}

	query, args, err := tableFilter(psql.Select(tableReservationColumns...).From("table_reservations"), f).
		OrderBy("requested_time", "id").
		Limit(uint64(p.PageSize)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	out := []model.TableReservation{}
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "list table reservations")
	}
	return out, total, nil
}

func (r tableReservationRepo) DuePending(ctx context.Context, now time.Time, limit int) ([]model.TableReservation, error) {
	query, args, err := psql.Select(tableReservationColumns...).
		From("table_reservations").
		Where(sq.Eq{"status": string(model.StatusPending)}).
		Where("requested_time <= ?", now).
		OrderBy("requested_time").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var out []model.TableReservation
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errors.Wrap(err, "due table reservations")
	}
	return out, nil
}
