package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/orderflow/order-service/internal/order/application"
	"github.com/orderflow/order-service/internal/order/domain"
)

// OrderService is the slice of the orchestrator the transport needs.
type OrderService interface {
	CreateOrder(ctx context.Context, req application.OrderRequest) (domain.Order, error)
	UpdateOrder(ctx context.Context, id string, req application.OrderRequest) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (domain.Order, error)
	CancelOrder(ctx context.Context, id string) error
	DeleteOrder(ctx context.Context, id string) error
	GetOrderByID(ctx context.Context, id string) (domain.Order, error)
	GetAllOrders(ctx context.Context) ([]domain.Order, error)
	GetOrdersByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error)
	GetAllOrdersWithoutCancelled(ctx context.Context) ([]domain.Order, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/order", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.getAllOrders)
		r.Get("/customer", h.getOrdersByCustomerEmail)
		r.Get("/status", h.getOrdersByStatus)
		r.Get("/without-cancelled", h.getOrdersWithoutCancelled)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Put("/{id}/update-status", h.updateOrderStatus)
		r.Delete("/cancel/{id}", h.cancelOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req application.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errInvalidBody)
		return
	}

	order, err := h.service.CreateOrder(ctx, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusCreated, "order placed", application.FromOrder(order))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrder")
	defer span.End()

	var req application.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errInvalidBody)
		return
	}

	order, err := h.service.UpdateOrder(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "order updated", application.FromOrder(order))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	order, err := h.service.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("orderStatus"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "order status updated", application.FromOrder(order))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelOrder")
	defer span.End()

	if err := h.service.CancelOrder(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "order cancelled", nil)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	if err := h.service.DeleteOrder(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "order deleted", nil)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	order, err := h.service.GetOrderByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "order found", application.FromOrder(order))
}

func (h *Handler) getAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAllOrders")
	defer span.End()

	orders, err := h.service.GetAllOrders(ctx)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "orders found", application.FromOrders(orders))
}

func (h *Handler) getOrdersByCustomerEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrdersByCustomerEmail")
	defer span.End()

	orders, err := h.service.GetOrdersByCustomerEmail(ctx, r.URL.Query().Get("customerEmail"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "orders found", application.FromOrders(orders))
}

func (h *Handler) getOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrdersByStatus")
	defer span.End()

	orders, err := h.service.GetOrdersByStatus(ctx, r.URL.Query().Get("orderStatus"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "orders found", application.FromOrders(orders))
}

func (h *Handler) getOrdersWithoutCancelled(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAllOrdersWithoutCancelled")
	defer span.End()

	orders, err := h.service.GetAllOrdersWithoutCancelled(ctx)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, h.log, http.StatusOK, "orders found", application.FromOrders(orders))
}
