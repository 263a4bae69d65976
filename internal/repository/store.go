package repository

import (
	"context"
	"time"

	"github.com/iliyamo/tenant-booking/internal/model"
)

// Store runs units of work against reservation storage.
//
// Update executes fn as a single atomic unit: either every write made through
// tx is kept or none is.  Implementations must serialise Update calls that
// lock the same resource so a conflict check and the write that follows it
// cannot interleave with another writer on that resource.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Resources() Resources
	SpaceReservations() SpaceReservations
	TableReservations() TableReservations
}

// Resources looks up bookable resources.  Every lookup is tenant scoped and
// a resource owned by another tenant is reported as errs.ErrNotFound.  The
// Lock variants hold the resource until the unit of work ends.
type Resources interface {
	GetSpace(ctx context.Context, tenantID, spaceID uint64) (model.Space, error)
	LockSpace(ctx context.Context, tenantID, spaceID uint64) (model.Space, error)
	GetTable(ctx context.Context, tenantID, tableID uint64) (model.Table, error)
	LockTable(ctx context.Context, tenantID, tableID uint64) (model.Table, error)
}

// SpaceReservations persists space reservations.
//
// Candidates returns active reservations on the space whose bounds touch or
// cross window, excluding excludeID (0 excludes nothing).  The result may
// contain reservations that only touch the window; callers apply the exact
// overlap predicate.
type SpaceReservations interface {
	Insert(ctx context.Context, r *model.SpaceReservation) error
	Get(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error)
	Lock(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error)
	Candidates(ctx context.Context, tenantID, spaceID uint64, window model.Interval, excludeID uint64) ([]model.SpaceReservation, error)
	Update(ctx context.Context, r model.SpaceReservation) error
	Delete(ctx context.Context, tenantID, id uint64) error
	List(ctx context.Context, f model.SpaceReservationFilter) ([]model.SpaceReservation, int, error)
	DuePending(ctx context.Context, now time.Time, limit int) ([]model.SpaceReservation, error)
}

// TableReservations persists table reservations.  Candidates follows the
// same contract as SpaceReservations.Candidates.
type TableReservations interface {
	Insert(ctx context.Context, r *model.TableReservation) error
	Get(ctx context.Context, tenantID, id uint64) (model.TableReservation, error)
	Lock(ctx context.Context, tenantID, id uint64) (model.TableReservation, error)
	Candidates(ctx context.Context, tenantID, tableID uint64, window model.Interval, excludeID uint64) ([]model.TableReservation, error)
	Update(ctx context.Context, r model.TableReservation) error
	Delete(ctx context.Context, tenantID, id uint64) error
	List(ctx context.Context, f model.TableReservationFilter) ([]model.TableReservation, int, error)
	DuePending(ctx context.Context, now time.Time, limit int) ([]model.TableReservation, error)
}
