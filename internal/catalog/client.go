// Package catalog fetches product records from the hosted REST backend.
// The wire shape is validated and coerced here at the boundary; nothing
// downstream sees raw catalog JSON.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidRecord   = errors.New("invalid product record")
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// productRecord is the upstream wire shape. The backend is loose about
// types: price arrives as a number or a quoted string, and the display
// image is either a single "image" field or the first of "images".
type productRecord struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       flexNumber `json:"price"`
	Image       string     `json:"image"`
	Images      []string   `json:"images"`
}

type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price is not numeric: %q", s)
		}
		*n = flexNumber(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}

func (r productRecord) toDomain() (domain.Product, error) {
	if r.ID <= 0 {
		return domain.Product{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: product %d has no name", ErrInvalidRecord, r.ID)
	}
	if r.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: product %d has negative price", ErrInvalidRecord, r.ID)
	}

	image := r.Image
	if image == "" && len(r.Images) > 0 {
		image = r.Images[0]
	}

	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       float64(r.Price),
		Image:       image,
	}, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var records []productRecord
	if err := c.getJSON(ctx, c.baseURL+"/products", &records); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(records))
	for _, r := range records {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var record productRecord
	err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), &record)
	if err != nil {
		return nil, err
	}

	p, err := record.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}
