// Package worker runs background jobs against the reservation engine.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/metrics"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/queue"
)

// SpaceExpirer is the part of the space service the sweeper drives.
type SpaceExpirer interface {
	DuePending(ctx context.Context, limit int) ([]model.SpaceReservation, error)
	Transition(ctx context.Context, tenantID, id uint64, action model.Action) (model.SpaceReservation, error)
}

// TableExpirer is the part of the table service the sweeper drives.
type TableExpirer interface {
	DuePending(ctx context.Context, limit int) ([]model.TableReservation, error)
	Transition(ctx context.Context, tenantID, id uint64, action model.Action) (model.TableReservation, error)
}

// Expirer moves PENDING reservations whose start has passed to EXPIRED.
// Each expiry goes through the normal transition path, so a reservation
// confirmed between listing and expiring is left alone.
type Expirer struct {
	spaces   SpaceExpirer
	tables   TableExpirer
	interval time.Duration
	batch    int
	log      *zap.Logger
}

func NewExpirer(spaces SpaceExpirer, tables TableExpirer, interval time.Duration, batch int, log *zap.Logger) *Expirer {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &Expirer{spaces: spaces, tables: tables, interval: interval, batch: batch, log: log.Named("expirer")}
}

// Run sweeps once immediately and then every interval until ctx ends.
func (e *Expirer) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		e.Sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep expires one batch of each kind and returns how many were expired.
func (e *Expirer) Sweep(ctx context.Context) (spaces, tables int) {
	if due, err := e.spaces.DuePending(ctx, e.batch); err != nil {
		e.log.Error("list due space reservations", zap.Error(err))
	} else {
		for _, r := range due {
			if _, err := e.spaces.Transition(ctx, r.TenantID, r.ID, model.ActionExpire); err != nil {
				e.log.Warn("expire space reservation", zap.Uint64("reservation_id", r.ID), zap.Error(err))
				continue
			}
			spaces++
		}
	}

	if due, err := e.tables.DuePending(ctx, e.batch); err != nil {
		e.log.Error("list due table reservations", zap.Error(err))
	} else {
		for _, r := range due {
			if _, err := e.tables.Transition(ctx, r.TenantID, r.ID, model.ActionExpire); err != nil {
				e.log.Warn("expire table reservation", zap.Uint64("reservation_id", r.ID), zap.Error(err))
				continue
			}
			tables++
		}
	}

	metrics.RecordExpired(string(queue.KindSpace), spaces)
	metrics.RecordExpired(string(queue.KindTable), tables)
	if spaces+tables > 0 {
		e.log.Info("expired pending reservations", zap.Int("spaces", spaces), zap.Int("tables", tables))
	}
	return spaces, tables
}
