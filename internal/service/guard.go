package service

import (
	"context"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

// The guard functions resolve a resource or reservation inside the caller's
// tenant.  Anything owned by another tenant comes back as errs.ErrNotFound,
// exactly like a missing row.

func requireTenant(tenantID uint64) error {
	if tenantID == 0 {
		return errs.Invalid("tenant_id", "is required")
	}
	return nil
}

func resolveSpace(ctx context.Context, tx repository.Tx, tenantID, spaceID uint64, lock bool) (model.Space, error) {
	if lock {
		return tx.Resources().LockSpace(ctx, tenantID, spaceID)
	}
	return tx.Resources().GetSpace(ctx, tenantID, spaceID)
}

func resolveTable(ctx context.Context, tx repository.Tx, tenantID, tableID uint64, lock bool) (model.Table, error) {
	if lock {
		return tx.Resources().LockTable(ctx, tenantID, tableID)
	}
	return tx.Resources().GetTable(ctx, tenantID, tableID)
}

func resolveSpaceReservation(ctx context.Context, tx repository.Tx, tenantID, id uint64, lock bool) (model.SpaceReservation, error) {
	if lock {
		return tx.SpaceReservations().Lock(ctx, tenantID, id)
	}
	return tx.SpaceReservations().Get(ctx, tenantID, id)
}

func resolveTableReservation(ctx context.Context, tx repository.Tx, tenantID, id uint64, lock bool) (model.TableReservation, error) {
	if lock {
		return tx.TableReservations().Lock(ctx, tenantID, id)
	}
	return tx.TableReservations().Get(ctx, tenantID, id)
}
