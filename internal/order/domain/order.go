package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPlaced    Status = "PLACED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrEmptyOrder            = errors.New("order must contain at least one item")
	ErrMissingProductID      = errors.New("order item must reference a product id")
	ErrInvalidQuantity       = errors.New("order item quantity must be positive")
	ErrInvalidPhone          = errors.New("customer phone does not match the expected pattern")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrInvalidStatus         = errors.New("unrecognised order status")
	ErrUpstream              = errors.New("upstream dependency unavailable")
)

// ProductNotFoundError aborts a create/update before anything is persisted.
type ProductNotFoundError struct {
	ProductID string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError is raised when the requested quantity exceeds the
// availability reported by the catalog at lookup time.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// ParseStatus accepts any casing of a known status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusPlaced:
		return StatusPlaced, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Order is the aggregate root. Items are owned exclusively by their order and
// have no identity outside it.
type Order struct {
	ID                  string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	CustomerDeviceToken string
	ShippingAddress     string
	TotalAmount         decimal.Decimal
	OrderDate           time.Time
	Status              Status
	Items               []OrderItem
	UpdatedAt           time.Time
}

// OrderItem carries a denormalized snapshot of the catalog product taken at
// order-creation/update time. ProductName and UnitPrice are never re-read, so
// historical orders keep the price at time of order.
type OrderItem struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// ProductSnapshot is the ephemeral result of a catalog lookup.
type ProductSnapshot struct {
	ID                string
	Name              string
	Price             decimal.Decimal
	AvailableQuantity int
}

// Subtotal is unitPrice x quantity at the currency's natural precision.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal recomputes the derived total from the item subtotals. Callers
// never set TotalAmount directly.
func (o *Order) ComputeTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
}

// Cancel transitions the order to its terminal state. A second cancel is
// rejected, never absorbed.
func (o *Order) Cancel() error {
	if o.Status == StatusCancelled {
		return ErrOrderAlreadyCancelled
	}
	o.Status = StatusCancelled
	return nil
}
