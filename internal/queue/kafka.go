package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// PublishTimeout bounds a single event delivery, network round trips
// included.
const PublishTimeout = 3 * time.Second

// NewKafkaProducer builds a synchronous producer that waits for all
// in-sync replicas.  Every network step is bounded by timeout so a blocked
// broker cannot hold a send much longer than the caller's deadline.
func NewKafkaProducer(addrs []string, timeout time.Duration) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(addrs, kafkaConfig(timeout))
}

func kafkaConfig(timeout time.Duration) *sarama.Config {
	if timeout <= 0 {
		timeout = PublishTimeout
	}
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Timeout = timeout
	cfg.Producer.Retry.Max = 1
	cfg.Net.DialTimeout = timeout
	cfg.Net.ReadTimeout = timeout
	cfg.Net.WriteTimeout = timeout
	cfg.Metadata.Timeout = timeout
	return cfg
}

// KafkaPublisher publishes events to a topic.  Messages are keyed by tenant
// and resource so a resource's events stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends ev and waits for the acknowledgement or ctx, whichever
// comes first.  SyncProducer cannot be cancelled, so a send abandoned on
// ctx finishes in the background within the producer timeouts.
func (p *KafkaPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "send message")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	key := strconv.FormatUint(ev.TenantID, 10) + ":" + string(ev.Kind) + ":" + strconv.FormatUint(ev.ResourceID, 10)
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	done := make(chan error, 1)
	go func() {
		_, _, err := p.producer.SendMessage(msg)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "send message")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "send message")
	}
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }
