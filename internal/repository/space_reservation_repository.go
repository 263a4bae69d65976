package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/iliyamo/tenant-booking/internal/model"
)

type spaceReservationRepo struct {
	q queryer
}

var spaceReservationColumns = []string{
	"id", "tenant_id", "space_id", "booked_by_user_id", "start_time", "end_time",
	"total_price_cents", "status", "notes", "created_at",
}

func activeStatuses() []string {
	out := make([]string, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func (r spaceReservationRepo) Insert(ctx context.Context, res *model.SpaceReservation) error {
	const q = `INSERT INTO space_reservations
        (tenant_id, space_id, booked_by_user_id, start_time, end_time, total_price_cents, status, notes, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q,
		res.TenantID, res.SpaceID, res.BookedByUserID, res.StartTime, res.EndTime,
		res.TotalPriceCents, string(res.Status), res.Notes, res.CreatedAt)
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

func (r spaceReservationRepo) get(ctx context.Context, tenantID, id uint64, lock bool) (model.SpaceReservation, error) {
	b := psql.Select(spaceReservationColumns...).
		From("space_reservations").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"tenant_id": tenantID})
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return model.SpaceReservation{}, err
	}
	var out model.SpaceReservation
	return out, translate(r.q.GetContext(ctx, &out, query, args...))
}

func (r spaceReservationRepo) Get(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error) {
	return r.get(ctx, tenantID, id, false)
}

func (r spaceReservationRepo) Lock(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r spaceReservationRepo) Candidates(ctx context.Context, tenantID, spaceID uint64, window model.Interval, excludeID uint64) ([]model.SpaceReservation, error) {
	// Inclusive bounds keep touching rows and points in the candidate set.
	b := psql.Select(spaceReservationColumns...).
		From("space_reservations").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"space_id": spaceID}).
		Where(sq.Eq{"status": activeStatuses()}).
		Where("start_time <= ?", window.End).
		Where("end_time >= ?", window.Start)
	if excludeID != 0 {
		b = b.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := b.OrderBy("start_time").ToSql()
	if err != nil {
		return nil, err
	}
	var out []model.SpaceReservation
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errors.Wrap(err, "space candidates")
	}
	return out, nil
}

func (r spaceReservationRepo) Update(ctx context.Context, res model.SpaceReservation) error {
	const q = `UPDATE space_reservations
        SET start_time = ?, end_time = ?, total_price_cents = ?, status = ?, notes = ?
        WHERE id = ? AND tenant_id = ?`
	return expectOne(r.q.ExecContext(ctx, q,
		res.StartTime, res.EndTime, res.TotalPriceCents, string(res.Status), res.Notes, res.ID, res.TenantID))
}

func (r spaceReservationRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	const q = `DELETE FROM space_reservations WHERE id = ? AND tenant_id = ?`
	return expectOne(r.q.ExecContext(ctx, q, id, tenantID))
}

func spaceFilter(b sq.SelectBuilder, f model.SpaceReservationFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"tenant_id": f.TenantID})
	if f.SpaceID != 0 {
		b = b.Where(sq.Eq{"space_id": f.SpaceID})
	}
	if f.UserID != 0 {
		b = b.Where(sq.Eq{"booked_by_user_id": f.UserID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	return dateRange(b, f.DateRange, "start_time", "end_time")
}

// dateRange keeps rows whose [start, end) overlaps the range, treating
// zero-length rows as points.
func dateRange(b sq.SelectBuilder, d model.DateRange, startCol, endCol string) sq.SelectBuilder {
	if d.To != nil {
		b = b.Where(startCol+" < ?", *d.To)
	}
	if d.From != nil {
		b = b.Where("("+endCol+" > ? OR ("+endCol+" = "+startCol+" AND "+startCol+" >= ?))", *d.From, *d.From)
	}
	return b
}

func (r spaceReservationRepo) List(ctx context.Context, f model.SpaceReservationFilter) ([]model.SpaceReservation, int, error) {
	p := f.Pagination.Normalize()

	countQ, countArgs, err := spaceFilter(psql.Select("COUNT(*)").From("space_reservations"), f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.GetContext(ctx, &total, countQ, countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "count space reservations")
	}

	query, args, err := spaceFilter(psql.Select(spaceReservationColumns...).From("space_reservations"), f).
		OrderBy("start_time", "id").
		Limit(uint64(p.PageSize)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	out := []model.SpaceReservation{}
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "list space reservations")
	}
	return out, total, nil
}

func (r spaceReservationRepo) DuePending(ctx context.Context, now time.Time, limit int) ([]model.SpaceReservation, error) {
	query, args, err := psql.Select(spaceReservationColumns...).
		From("space_reservations").
		Where(sq.Eq{"status": string(model.StatusPending)}).
		Where("start_time <= ?", now).
		OrderBy("start_time").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var out []model.SpaceReservation
	if err := r.q.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errors.Wrap(err, "due space reservations")
	}
	return out, nil
}
