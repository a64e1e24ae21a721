package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/orderflow/order-service/internal/order/domain"
	"github.com/orderflow/order-service/pkg/logging"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func testTopics() Topics {
	return Topics{OrderPlaced: "order-placed", OrderCancelled: "order-cancelled"}
}

func TestPublishOrderPlaced(t *testing.T) {
	async := &captureWriter{}
	p := NewPublisher(logging.New(), async, &captureWriter{}, testTopics())

	p.PublishOrderPlaced(context.Background(), domain.OrderPlacedEvent{
		OrderID:             "o-1",
		CustomerEmail:       "john@x.com",
		CustomerPhoneNumber: "+15550100",
	})

	if len(async.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(async.msgs))
	}
	msg := async.msgs[0]
	if msg.Topic != "order-placed" || string(msg.Key) != "o-1" {
		t.Errorf("topic/key = %s/%s", msg.Topic, msg.Key)
	}

	var ev domain.OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.CustomerEmail != "john@x.com" {
		t.Errorf("payload email = %s", ev.CustomerEmail)
	}

	var eventType string
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			eventType = string(h.Value)
		}
	}
	if eventType != "OrderPlaced" {
		t.Errorf("event_type header = %q", eventType)
	}
}

func TestPublishOrderPlacedNeverSurfacesErrors(t *testing.T) {
	async := &captureWriter{err: errors.New("broker down")}
	p := NewPublisher(logging.New(), async, &captureWriter{}, testTopics())

	// Must not panic or block; the failure is logged only.
	p.PublishOrderPlaced(context.Background(), domain.OrderPlacedEvent{OrderID: "o-2"})
}

func TestPublishOrderCancelled(t *testing.T) {
	sync := &captureWriter{}
	p := NewPublisher(logging.New(), &captureWriter{}, sync, testTopics())

	err := p.PublishOrderCancelled(context.Background(), domain.OrderCancelledEvent{OrderID: "o-3"})
	if err != nil {
		t.Fatalf("PublishOrderCancelled: %v", err)
	}
	if len(sync.msgs) != 1 || sync.msgs[0].Topic != "order-cancelled" {
		t.Fatalf("messages = %+v", sync.msgs)
	}

	sync.err = errors.New("timeout")
	if err := p.PublishOrderCancelled(context.Background(), domain.OrderCancelledEvent{OrderID: "o-4"}); err == nil {
		t.Error("sync publish failure not surfaced to the caller")
	}
}
