package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/orderflow/order-service/internal/order/domain"
)

// Service coordinates the order saga: catalog fan-out, local persistence,
// best-effort inventory side effects and event publication. There is no
// saga-level transaction spanning the remote calls; the repository save is
// the only durability boundary.
type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	catalog   ProductCatalog
	inventory InventoryClient
	publisher EventPublisher
}

func NewService(log *slog.Logger, repo OrderRepository, catalog ProductCatalog, inventory InventoryClient, publisher EventPublisher) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		catalog:   catalog,
		inventory: inventory,
		publisher: publisher,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}

	order := req.ToOrder()
	if err := s.priceItems(ctx, &order); err != nil {
		return domain.Order{}, err
	}

	order.ID = uuid.NewString()
	order.OrderDate = time.Now().UTC()
	order.Status = domain.StatusPlaced

	if err := s.repo.Save(ctx, order); err != nil {
		return domain.Order{}, err
	}

	// Deduction runs after the commit and off the response path. A failure
	// here leaves an order whose inventory was never deducted; that gap is
	// accepted and only logged.
	go s.deductInventory(context.WithoutCancel(ctx), order)

	s.publisher.PublishOrderPlaced(ctx, placedEvent(order))
	return order, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id string, req OrderRequest) (domain.Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}

	// The item collection is replaced wholesale; prices are re-snapshotted
	// at update time.
	order := req.ToOrder()
	order.ID = existing.ID
	order.OrderDate = existing.OrderDate
	if err := s.priceItems(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.StatusPlaced

	if err := s.repo.Save(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// UpdateOrderStatus accepts any recognised status string regardless of the
// current status; only cancellation enforces a terminal-state guard.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string) (domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = parsed
	if err := s.repo.Save(ctx, order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, id string) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := order.Cancel(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return err
	}

	// Blocking publish: the caller needs delivery confidence here, but the
	// local state change stays authoritative even when the broker is down.
	if err := s.publisher.PublishOrderCancelled(ctx, cancelledEvent(order)); err != nil {
		s.log.Error("order cancelled event publish failed", "order_id", order.ID, "err", err)
	}
	return nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetOrdersByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return s.repo.ListByCustomerEmail(ctx, email)
}

func (s *Service) GetOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, parsed)
}

func (s *Service) GetAllOrdersWithoutCancelled(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListWithoutCancelled(ctx)
}

// priceItems fans out one catalog lookup per item and aggregates fail-fast:
// the first miss or stock shortfall aborts the whole request. Each goroutine
// writes only its own item index.
func (s *Service) priceItems(ctx context.Context, order *domain.Order) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range order.Items {
		item := &order.Items[i]
		g.Go(func() error {
			snapshot, err := s.catalog.GetProduct(gctx, item.ProductID)
			if err != nil {
				return err
			}
			if snapshot.AvailableQuantity < item.Quantity {
				return domain.InsufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: snapshot.AvailableQuantity,
				}
			}
			item.ProductName = snapshot.Name
			item.UnitPrice = snapshot.Price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	order.ComputeTotal()
	return nil
}

func (s *Service) deductInventory(ctx context.Context, order domain.Order) {
	for _, item := range order.Items {
		if err := s.inventory.Deduct(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Error("inventory deduction failed",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"err", err)
		}
	}
}

func placedEvent(o domain.Order) domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		OrderID:             o.ID,
		CustomerEmail:       o.CustomerEmail,
		CustomerDeviceToken: o.CustomerDeviceToken,
		CustomerPhoneNumber: o.CustomerPhone,
	}
}

func cancelledEvent(o domain.Order) domain.OrderCancelledEvent {
	return domain.OrderCancelledEvent{
		OrderID:             o.ID,
		CustomerEmail:       o.CustomerEmail,
		CustomerDeviceToken: o.CustomerDeviceToken,
		CustomerPhoneNumber: o.CustomerPhone,
	}
}
