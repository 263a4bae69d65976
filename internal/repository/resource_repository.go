package repository

import (
	"context"

	"github.com/iliyamo/tenant-booking/internal/model"
)

type resourceRepo struct {
	q queryer
}

const (
	selectSpace = `SELECT id, tenant_id, name FROM spaces WHERE id = ? AND tenant_id = ?`
	selectTable = `SELECT id, tenant_id, label, capacity FROM restaurant_tables WHERE id = ? AND tenant_id = ?`
)

func (r resourceRepo) GetSpace(ctx context.Context, tenantID, spaceID uint64) (model.Space, error) {
	var s model.Space
	err := r.q.GetContext(ctx, &s, selectSpace, spaceID, tenantID)
	return s, translate(err)
}

func (r resourceRepo) LockSpace(ctx context.Context, tenantID, spaceID uint64) (model.Space, error) {
	var s model.Space
	err := r.q.GetContext(ctx, &s, selectSpace+` FOR UPDATE`, spaceID, tenantID)
	return s, translate(err)
}

func (r resourceRepo) GetTable(ctx context.Context, tenantID, tableID uint64) (model.Table, error) {
	var t model.Table
	err := r.q.GetContext(ctx, &t, selectTable, tableID, tenantID)
	return t, translate(err)
}

func (r resourceRepo) LockTable(ctx context.Context, tenantID, tableID uint64) (model.Table, error) {
	var t model.Table
	err := r.q.GetContext(ctx, &t, selectTable+` FOR UPDATE`, tableID, tenantID)
	return t, translate(err)
}
