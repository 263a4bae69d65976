// Package memory is an in-process implementation of repository.Store.  It
// keeps all rows in maps guarded by a single lock; Update works on a copy
// of the state and publishes it only when fn succeeds, so a failed unit of
// work leaves nothing behind.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

type state struct {
	spaces      map[uint64]model.Space
	tables      map[uint64]model.Table
	spaceRes    map[uint64]model.SpaceReservation
	tableRes    map[uint64]model.TableReservation
	nextSpaceID uint64
	nextTableID uint64
}

func (s *state) clone() *state {
	return &state{
		spaces:      maps.Clone(s.spaces),
		tables:      maps.Clone(s.tables),
		spaceRes:    maps.Clone(s.spaceRes),
		tableRes:    maps.Clone(s.tableRes),
		nextSpaceID: s.nextSpaceID,
		nextTableID: s.nextTableID,
	}
}

// Store is safe for concurrent use.  Writers are fully serialised.
type Store struct {
	mu  sync.RWMutex
	cur *state
}

// New returns an empty store.
func New() *Store {
	return &Store{cur: &state{
		spaces:   map[uint64]model.Space{},
		tables:   map[uint64]model.Table{},
		spaceRes: map[uint64]model.SpaceReservation{},
		tableRes: map[uint64]model.TableReservation{},
	}}
}

// PutSpace registers or replaces a space.
func (s *Store) PutSpace(sp model.Space) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.spaces[sp.ID] = sp
}

// PutTable registers or replaces a table.
func (s *Store) PutTable(t model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.tables[t.ID] = t
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{st: s.cur})
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next := s.cur.clone()
	if err := fn(&tx{st: next}); err != nil {
		return err
	}
	s.cur = next
	return nil
}

type tx struct {
	st *state
}

func (t *tx) Resources() repository.Resources                 { return resources{t.st} }
func (t *tx) SpaceReservations() repository.SpaceReservations { return spaceReservations{t.st} }
func (t *tx) TableReservations() repository.TableReservations { return tableReservations{t.st} }

type resources struct{ st *state }

func (r resources) GetSpace(_ context.Context, tenantID, spaceID uint64) (model.Space, error) {
	sp, ok := r.st.spaces[spaceID]
	if !ok || sp.TenantID != tenantID {
		return model.Space{}, errs.ErrNotFound
	}
	return sp, nil
}

// LockSpace is GetSpace: the store lock already serialises writers.
func (r resources) LockSpace(ctx context.Context, tenantID, spaceID uint64) (model.Space, error) {
	return r.GetSpace(ctx, tenantID, spaceID)
}

func (r resources) GetTable(_ context.Context, tenantID, tableID uint64) (model.Table, error) {
	t, ok := r.st.tables[tableID]
	if !ok || t.TenantID != tenantID {
		return model.Table{}, errs.ErrNotFound
	}
	return t, nil
}

func (r resources) LockTable(ctx context.Context, tenantID, tableID uint64) (model.Table, error) {
	return r.GetTable(ctx, tenantID, tableID)
}

// touches mirrors the inclusive SQL candidate filter; callers apply the
// strict overlap predicate afterwards.
func touches(w, window model.Interval) bool {
	return !w.Start.After(window.End) && !w.End.Before(window.Start)
}

func page[T any](all []T, p model.Pagination) []T {
	p = p.Normalize()
	off := p.Offset()
	if off >= len(all) {
		return []T{}
	}
	end := off + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[off:end]
}

func capped[T any](all []T, limit int) []T {
	if limit > 0 && len(all) > limit {
		return all[:limit]
	}
	return all
}

type spaceReservations struct{ st *state }

func (r spaceReservations) Insert(_ context.Context, res *model.SpaceReservation) error {
	r.st.nextSpaceID++
	res.ID = r.st.nextSpaceID
	r.st.spaceRes[res.ID] = *res
	return nil
}

func (r spaceReservations) Get(_ context.Context, tenantID, id uint64) (model.SpaceReservation, error) {
	res, ok := r.st.spaceRes[id]
	if !ok || res.TenantID != tenantID {
		return model.SpaceReservation{}, errs.ErrNotFound
	}
	return res, nil
}

func (r spaceReservations) Lock(ctx context.Context, tenantID, id uint64) (model.SpaceReservation, error) {
	return r.Get(ctx, tenantID, id)
}

func (r spaceReservations) Candidates(_ context.Context, tenantID, spaceID uint64, window model.Interval, excludeID uint64) ([]model.SpaceReservation, error) {
	var out []model.SpaceReservation
	for _, res := range r.st.spaceRes {
		if res.TenantID != tenantID || res.SpaceID != spaceID || res.ID == excludeID || !res.Status.IsActive() {
			continue
		}
		if touches(res.Window(), window) {
			out = append(out, res)
		}
	}
	sortSpace(out)
	return out, nil
}

func (r spaceReservations) Update(_ context.Context, res model.SpaceReservation) error {
	cur, ok := r.st.spaceRes[res.ID]
	if !ok || cur.TenantID != res.TenantID {
		return errs.ErrNotFound
	}
	res.CreatedAt = cur.CreatedAt
	r.st.spaceRes[res.ID] = res
	return nil
}

func (r spaceReservations) Delete(_ context.Context, tenantID, id uint64) error {
	cur, ok := r.st.spaceRes[id]
	if !ok || cur.TenantID != tenantID {
		return errs.ErrNotFound
	}
	delete(r.st.spaceRes, id)
	return nil
}

func (r spaceReservations) List(_ context.Context, f model.SpaceReservationFilter) ([]model.SpaceReservation, int, error) {
	var all []model.SpaceReservation
	for _, res := range r.st.spaceRes {
		switch {
		case res.TenantID != f.TenantID,
			f.SpaceID != 0 && res.SpaceID != f.SpaceID,
			f.UserID != 0 && res.BookedByUserID != f.UserID,
			f.Status != "" && res.Status != f.Status,
			!f.DateRange.Matches(res.Window()):
			continue
		}
		all = append(all, res)
	}
	sortSpace(all)
	return page(all, f.Pagination), len(all), nil
}

func (r spaceReservations) DuePending(_ context.Context, now time.Time, limit int) ([]model.SpaceReservation, error) {
	var out []model.SpaceReservation
	for _, res := range r.st.spaceRes {
		if res.Status == model.StatusPending && !res.StartTime.After(now) {
			out = append(out, res)
		}
	}
	sortSpace(out)
	return capped(out, limit), nil
}

func sortSpace(rs []model.SpaceReservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartTime.Equal(rs[j].StartTime) {
			return rs[i].StartTime.Before(rs[j].StartTime)
		}
		return rs[i].ID < rs[j].ID
	})
}

type tableReservations struct{ st *state }

func (r tableReservations) Insert(_ context.Context, res *model.TableReservation) error {
	r.st.nextTableID++
	res.ID = r.st.nextTableID
	r.st.tableRes[res.ID] = *res
	return nil
}

func (r tableReservations) Get(_ context.Context, tenantID, id uint64) (model.TableReservation, error) {
	res, ok := r.st.tableRes[id]
	if !ok || res.TenantID != tenantID {
		return model.TableReservation{}, errs.ErrNotFound
	}
	return res, nil
}

func (r tableReservations) Lock(ctx context.Context, tenantID, id uint64) (model.TableReservation, error) {
	return r.Get(ctx, tenantID, id)
}

func (r tableReservations) Candidates(_ context.Context, tenantID, tableID uint64, window model.Interval, excludeID uint64) ([]model.TableReservation, error) {
	var out []model.TableReservation
	for _, res := range r.st.tableRes {
		if res.TenantID != tenantID || res.TableID != tableID || res.ID == excludeID || !res.Status.IsActive() {
			continue
		}
		if touches(res.Window(), window) {
			out = append(out, res)
		}
	}
	sortTable(out)
	return out, nil
}

func (r tableReservations) Update(_ context.Context, res model.TableReservation) error {
	cur, ok := r.st.tableRes[res.ID]
	if !ok || cur.TenantID != res.TenantID {
		return errs.ErrNotFound
	}
	res.CreatedAt = cur.CreatedAt
	r.st.tableRes[res.ID] = res
	return nil
}

func (r tableReservations) Delete(_ context.Context, tenantID, id uint64) error {
	cur, ok := r.st.tableRes[id]
	if !ok || cur.TenantID != tenantID {
		return errs.ErrNotFound
	}
	delete(r.st.tableRes, id)
	return nil
}

func (r tableReservations) List(_ context.Context, f model.TableReservationFilter) ([]model.TableReservation, int, error) {
	var all []model.TableReservation
	for _, res := range r.st.tableRes {
		switch {
		case res.TenantID != f.TenantID,
			f.TableID != 0 && res.TableID != f.TableID,
			f.CustomerID != 0 && res.CustomerID != f.CustomerID,
			f.Status != "" && res.Status != f.Status,
			!f.DateRange.Matches(res.Window()):
			continue
		}
		all = append(all, res)
	}
	sortTable(all)
	return page(all, f.Pagination), len(all), nil
}

func (r tableReservations) DuePending(_ context.Context, now time.Time, limit int) ([]model.TableReservation, error) {
	var out []model.TableReservation
	for _, res := range r.st.tableRes {
		if res.Status == model.StatusPending && !res.RequestedTime.After(now) {
			out = append(out, res)
		}
	}
	sortTable(out)
	return capped(out, limit), nil
}

func sortTable(rs []model.TableReservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].RequestedTime.Equal(rs[j].RequestedTime) {
			return rs[i].RequestedTime.Before(rs[j].RequestedTime)
		}
		return rs[i].ID < rs[j].ID
	})
}

var _ repository.Store = (*Store)(nil)
