package application

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderflow/order-service/internal/order/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9()\-\s]{7,20}$`)

type OrderItemRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
}

type OrderRequest struct {
	CustomerName        string             `json:"customerName"`
	CustomerEmail       string             `json:"customerEmail"`
	CustomerPhone       string             `json:"customerPhone,omitempty"`
	CustomerDeviceToken string             `json:"customerDeviceToken,omitempty"`
	ShippingAddress     string             `json:"shippingAddress"`
	Items               []OrderItemRequest `json:"items"`
}

type OrderItemDTO struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type OrderDTO struct {
	OrderID             string          `json:"orderId"`
	CustomerName        string          `json:"customerName"`
	CustomerEmail       string          `json:"customerEmail"`
	CustomerPhone       string          `json:"customerPhone,omitempty"`
	CustomerDeviceToken string          `json:"customerDeviceToken,omitempty"`
	ShippingAddress     string          `json:"shippingAddress"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	OrderDate           time.Time       `json:"orderDate"`
	OrderStatus         string          `json:"orderStatus"`
	Items               []OrderItemDTO  `json:"items"`
}

// Validate checks the request before any external call is made.
func (r *OrderRequest) Validate() error {
	if r == nil || len(r.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	for _, item := range r.Items {
		if item.ProductID == "" {
			return domain.ErrMissingProductID
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: product %s", domain.ErrInvalidQuantity, item.ProductID)
		}
	}
	if r.CustomerPhone != "" && !phonePattern.MatchString(r.CustomerPhone) {
		return domain.ErrInvalidPhone
	}
	return nil
}

// ToOrder builds the aggregate shell; item snapshots and the total are
// filled in after the catalog lookups.
func (r *OrderRequest) ToOrder() domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	return domain.Order{
		CustomerName:        r.CustomerName,
		CustomerEmail:       r.CustomerEmail,
		CustomerPhone:       r.CustomerPhone,
		CustomerDeviceToken: r.CustomerDeviceToken,
		ShippingAddress:     r.ShippingAddress,
		Status:              domain.StatusPending,
		Items:               items,
	}
}

func FromOrder(o domain.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return OrderDTO{
		OrderID:             o.ID,
		CustomerName:        o.CustomerName,
		CustomerEmail:       o.CustomerEmail,
		CustomerPhone:       o.CustomerPhone,
		CustomerDeviceToken: o.CustomerDeviceToken,
		ShippingAddress:     o.ShippingAddress,
		TotalAmount:         o.TotalAmount,
		OrderDate:           o.OrderDate,
		OrderStatus:         string(o.Status),
		Items:               items,
	}
}

func FromOrders(orders []domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, FromOrder(o))
	}
	return dtos
}

// ToDomain converts a DTO back to the aggregate, ignoring server-assigned
// fields that the caller cannot set (id, total, date, status).
func (d OrderDTO) ToDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return domain.Order{
		CustomerName:        d.CustomerName,
		CustomerEmail:       d.CustomerEmail,
		CustomerPhone:       d.CustomerPhone,
		CustomerDeviceToken: d.CustomerDeviceToken,
		ShippingAddress:     d.ShippingAddress,
		Items:               items,
	}
}
