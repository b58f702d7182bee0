package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// OrderLister reads back previously placed orders. Satisfied by
// orders.Client.
type OrderLister interface {
	ListByPhone(ctx context.Context, phone string) ([]domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderLister
	timeout time.Duration
}

func NewOrdersHandler(orders OrderLister, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// GET /api/v1/orders?phone=...
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	phone := r.URL.Query().Get("phone")
	if phone == "" {
		respondError(w, http.StatusBadRequest, "missing_phone", "phone query parameter is required")
		return
	}

	orders, err := h.orders.ListByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order history is temporarily unavailable")
			return
		}
		respondError(w, http.StatusBadGateway, "orders_unavailable", "order store is unavailable")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}
