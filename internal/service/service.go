// Package service is the reservation engine: it resolves resources inside
// the caller's tenant, rejects overlapping intervals, applies lifecycle
// transitions and persists the result in one storage unit of work.  Events
// are published only after that unit of work has committed.
package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/metrics"
	"github.com/iliyamo/tenant-booking/internal/queue"
	"github.com/iliyamo/tenant-booking/internal/repository"
)

const publishTimeout = queue.PublishTimeout

// EventPublisher receives committed reservation changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

type base struct {
	kind  queue.Kind
	store repository.Store
	clock Clock
	pub   EventPublisher
	log   *zap.Logger
}

func newBase(kind queue.Kind, store repository.Store, clock Clock, pub EventPublisher, log *zap.Logger) base {
	if clock == nil {
		clock = SystemClock{}
	}
	if pub == nil {
		pub = queue.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return base{kind: kind, store: store, clock: clock, pub: pub, log: log.Named(string(kind) + "-reservations")}
}

// publish never fails the caller: the change is already committed.
func (b base) publish(ctx context.Context, ev queue.ReservationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.pub.Publish(ctx, ev); err != nil {
		metrics.RecordPublishFailure()
		b.log.Warn("publish event failed",
			zap.Error(err),
			zap.String("event_type", string(ev.Type)),
			zap.Uint64("reservation_id", ev.ReservationID))
	}
}

// fail classifies err for logs and metrics and adds op as context.
func (b base) fail(op string, tenantID, id uint64, err error) error {
	kind := errs.Kind(err)
	fields := []zap.Field{zap.String("op", op), zap.Uint64("tenant_id", tenantID), zap.Uint64("id", id), zap.Error(err)}
	switch kind {
	case nil:
		b.log.Error("reservation operation failed", fields...)
	case errs.ErrConflict:
		metrics.RecordConflict(string(b.kind))
		b.log.Debug("reservation rejected", fields...)
	default:
		b.log.Debug("reservation rejected", fields...)
	}
	return errors.Wrap(err, op)
}
