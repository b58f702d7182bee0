// Package orders talks to the hosted order backend over its REST
// surface. The storefront only inserts pending orders and reads them
// back; the backend owns the status lifecycle.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewClient(baseURL, apiKey string) *Client {
	settings := gobreaker.Settings{
		Name:    "orders-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// CreateOrder inserts the order record. Callers treat this as
// fire-and-forget; an open breaker fails fast instead of piling
// requests onto a degraded backend.
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.postOrder(ctx, order)
	})
	return err
}

// ListByPhone returns the customer's orders, newest first.
func (c *Client) ListByPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	v, err := c.breaker.Execute(func() (any, error) {
		return c.getOrders(ctx, phone)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Order), nil
}

func (c *Client) postOrder(ctx context.Context, order *domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v1/orders", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build order request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("order backend returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) getOrders(ctx context.Context, phone string) ([]domain.Order, error) {
	query := url.Values{}
	query.Set("phone", "eq."+phone)
	query.Set("order", "created_at.desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/rest/v1/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build orders request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orders request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order backend returned status %d", resp.StatusCode)
	}

	var result []domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode orders response: %w", err)
	}

	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
