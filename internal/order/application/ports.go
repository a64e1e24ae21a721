package application

import (
	"context"
	"time"

	"github.com/orderflow/order-service/internal/order/domain"
)

type OrderRepository interface {
	// Save persists the aggregate in a single transaction. On update the
	// previous item rows are deleted before the new ones are inserted.
	Save(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	ListWithoutCancelled(ctx context.Context) ([]domain.Order, error)
	Delete(ctx context.Context, id string) error
	PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProductCatalog interface {
	// GetProduct is a single attempt: a catalog miss is a business error,
	// not a transient fault.
	GetProduct(ctx context.Context, productID string) (domain.ProductSnapshot, error)
}

type InventoryClient interface {
	Deduct(ctx context.Context, productID string, quantity int) error
	Restore(ctx context.Context, productID string, quantity int) error
}

type EventPublisher interface {
	// PublishOrderPlaced is fire-and-forget: enqueue, log the broker's
	// acknowledgement asynchronously, never block the caller on it.
	PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent)
	// PublishOrderCancelled blocks until the broker acknowledges receipt
	// or the publisher's own timeout expires.
	PublishOrderCancelled(ctx context.Context, ev domain.OrderCancelledEvent) error
}
