package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cache"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

type mockFetcher struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	calls    int
}

func (m *mockFetcher) ListProducts(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockFetcher) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockCache struct {
	mu      sync.Mutex
	product *domain.Product
	listing []domain.Product
	err     error
}

func (m *mockCache) GetProduct(context.Context, int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.product == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.product, nil
}

func (m *mockCache) SetProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.product = p
	return m.err
}

func (m *mockCache) GetListing(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.listing == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.listing, nil
}

func (m *mockCache) SetListing(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listing = products
	return m.err
}

func (m *mockCache) Invalidate(context.Context, int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.product = nil
	m.listing = nil
	return m.err
}

func (m *mockCache) getListing() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listing
}

func (m *mockCache) getProduct() *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.product
}

func TestListProducts_CacheMissFetchesAndFills(t *testing.T) {
	fetcher := &mockFetcher{products: []domain.Product{{ID: 1, Name: "Millet", Price: 220}}}
	mockC := &mockCache{}

	sut := NewService(fetcher, mockC)
	products, err := sut.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Millet", products[0].Name)

	require.Eventually(t, func() bool {
		return mockC.getListing() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "listing was not set in cache")
}

func TestListProducts_CacheHitSkipsFetcher(t *testing.T) {
	fetcher := &mockFetcher{}
	mockC := &mockCache{listing: []domain.Product{{ID: 2, Name: "Jaggery", Price: 150}}}

	sut := NewService(fetcher, mockC)
	products, err := sut.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestListProducts_CacheErrorFallsThrough(t *testing.T) {
	fetcher := &mockFetcher{products: []domain.Product{{ID: 1, Name: "Millet"}}}
	mockC := &mockCache{err: fmt.Errorf("redis down")}

	sut := NewService(fetcher, mockC)
	products, err := sut.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestListProducts_FetcherError(t *testing.T) {
	fetcher := &mockFetcher{err: fmt.Errorf("connection refused")}
	mockC := &mockCache{}

	sut := NewService(fetcher, mockC)
	_, err := sut.ListProducts(context.Background())
	require.ErrorContains(t, err, "connection refused")
}

func TestGetProduct_CacheMissFetchesAndFills(t *testing.T) {
	fetcher := &mockFetcher{products: []domain.Product{{ID: 7, Name: "Ghee", Price: 850}}}
	mockC := &mockCache{}

	sut := NewService(fetcher, mockC)
	product, err := sut.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Ghee", product.Name)

	require.Eventually(t, func() bool {
		return mockC.getProduct() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "product was not set in cache")
}

func TestGetProduct_NotFoundPropagates(t *testing.T) {
	fetcher := &mockFetcher{}
	mockC := &mockCache{}

	sut := NewService(fetcher, mockC)
	_, err := sut.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetProduct_ConcurrentMissesCollapse(t *testing.T) {
	fetcher := &mockFetcher{products: []domain.Product{{ID: 7, Name: "Ghee"}}}
	mockC := &mockCache{}

	sut := NewService(fetcher, mockC)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sut.GetProduct(context.Background(), 7)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, fetcher.callCount(), 10, "singleflight should collapse concurrent misses")
}
