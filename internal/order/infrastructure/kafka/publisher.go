package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/orderflow/order-service/internal/order/domain"
	"github.com/orderflow/order-service/pkg/tracing"
)

// Writer is the seam between the publisher and kafka-go.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Topics are validated non-blank at startup (config.Validate); the publisher
// trusts them here.
type Topics struct {
	OrderPlaced    string
	OrderCancelled string
}

// Publisher sends domain events in two modes. The async writer enqueues and
// reports broker acknowledgement through a completion callback; the sync
// writer blocks until the broker acknowledges or its write timeout expires.
// Publish failure in either mode never rolls back local state.
type Publisher struct {
	log    *slog.Logger
	async  Writer
	sync   Writer
	topics Topics
}

func NewPublisher(log *slog.Logger, async, sync Writer, topics Topics) *Publisher {
	return &Publisher{log: log, async: async, sync: sync, topics: topics}
}

// NewAsyncWriter builds the fire-and-forget writer. The short batch timeout
// bounds publish latency without waiting for acknowledgement; kafka-go has
// no explicit flush call.
func NewAsyncWriter(log *slog.Logger, brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			for _, m := range messages {
				if err != nil {
					log.Error("async publish failed", "topic", m.Topic, "key", string(m.Key), "err", err)
					continue
				}
				log.Info("async publish acknowledged", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset)
			}
		},
	}
}

// NewSyncWriter builds the acknowledgement-blocking writer used by the
// cancellation flow.
func NewSyncWriter(brokers []string, timeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: timeout,
	}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) {
	msg, err := p.message(ctx, p.topics.OrderPlaced, ev.OrderID, "OrderPlaced", ev)
	if err != nil {
		p.log.Error("order placed event encode failed", "order_id", ev.OrderID, "err", err)
		return
	}
	// With an async writer this returns as soon as the message is enqueued.
	if err := p.async.WriteMessages(ctx, msg); err != nil {
		p.log.Error("order placed event enqueue failed", "order_id", ev.OrderID, "err", err)
	}
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, ev domain.OrderCancelledEvent) error {
	msg, err := p.message(ctx, p.topics.OrderCancelled, ev.OrderID, "OrderCancelled", ev)
	if err != nil {
		return err
	}
	if err := p.sync.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.log.Info("order cancelled event acknowledged", "order_id", ev.OrderID, "topic", p.topics.OrderCancelled)
	return nil
}

func (p *Publisher) message(ctx context.Context, topic, key, eventType string, ev any) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	headers := []kafka.Header{{Key: "event_type", Value: []byte(eventType)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
	}, nil
}
