package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditConsumer drains the reservation event queue and writes one structured
// line per event to the audit logger.  Malformed messages are rejected
// without requeue so a poison message cannot spin the loop.
type AuditConsumer struct {
	url   string
	queue string
	log   *zap.Logger
	audit *zap.Logger
}

func NewAuditConsumer(url, queue string, log, audit *zap.Logger) *AuditConsumer {
	return &AuditConsumer{url: url, queue: queue, log: log.Named("audit-consumer"), audit: audit}
}

// Run keeps reconnecting with exponential backoff until ctx is cancelled.
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "queue declare")
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.log.Error("handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *AuditConsumer) handle(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	if ev.ReservationID == 0 || ev.Kind == "" {
		return errors.New("event without reservation")
	}
	c.audit.Info("reservation "+string(ev.Type),
		zap.String("event_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.Uint64("tenant_id", ev.TenantID),
		zap.Uint64("reservation_id", ev.ReservationID),
		zap.Uint64("resource_id", ev.ResourceID),
		zap.String("status", string(ev.Status)),
		zap.Time("start", ev.Start),
		zap.Time("end", ev.End),
		zap.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}
