package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orderflow/order-service/internal/order/domain"
)

var errInvalidBody = errors.New("invalid request body")

// Response is the uniform result envelope: a human-readable message, a
// success flag, optional data and the numeric status code.
type Response struct {
	Message string `json:"message"`
	Flag    bool   `json:"flag"`
	Data    any    `json:"data"`
	Code    int    `json:"code"`
}

func writeData(w http.ResponseWriter, log *slog.Logger, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Message: message, Flag: true, Data: data, Code: status}); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, message := mapError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(Response{Message: message, Flag: false, Code: status}); encErr != nil {
		log.Error("failed to encode error response", "err", encErr)
	}
}

// mapError keeps business failures distinguishable from infrastructure
// failures: the latter get a generic message, never internals.
func mapError(err error) (int, string) {
	var notFound domain.ProductNotFoundError
	var shortStock domain.InsufficientStockError

	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrMissingProductID),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &shortStock):
		return http.StatusUnprocessableEntity, shortStock.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, domain.ErrOrderNotFound.Error()
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		return http.StatusConflict, domain.ErrOrderAlreadyCancelled.Error()
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, domain.ErrUpstream.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
