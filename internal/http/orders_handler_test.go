package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

type orderListerMock struct {
	orders []domain.Order
	err    error
}

func (m orderListerMock) ListByPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func TestListOrders(t *testing.T) {
	handler := NewOrdersHandler(orderListerMock{orders: []domain.Order{
		{ID: "order-1", Phone: "9876543210", Total: 490},
	}}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/?phone=9876543210", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var response OrdersResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.Len(t, response.Orders, 1)
	assert.Equal(t, "order-1", response.Orders[0].ID)
}

func TestListOrders_MissingPhone(t *testing.T) {
	handler := NewOrdersHandler(orderListerMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListOrders_NoOrders(t *testing.T) {
	handler := NewOrdersHandler(orderListerMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/?phone=9876543210", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"orders":[]}`, recorder.Body.String())
}

func TestListOrders_CircuitOpen(t *testing.T) {
	handler := NewOrdersHandler(orderListerMock{err: gobreaker.ErrOpenState}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/?phone=9876543210", nil))

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "service_unavailable", response.Code)
}

func TestListOrders_UpstreamFailure(t *testing.T) {
	handler := NewOrdersHandler(orderListerMock{err: assert.AnError}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/?phone=9876543210", nil))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}
