package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/cache"
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// Fetcher is the REST boundary the service reads through on cache miss.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// Service is the cache-aside catalog reader: Redis in front of the REST
// client, with singleflight collapsing concurrent misses for the same
// key. Cache failures are logged and bypassed, never surfaced.
type Service struct {
	fetcher Fetcher
	cache   cache.ProductCache
	sfg     singleflight.Group
}

// NewService builds the catalog reader. A nil cache disables caching;
// every read then goes straight to the fetcher.
func NewService(fetcher Fetcher, productCache cache.ProductCache) *Service {
	if productCache == nil {
		productCache = noopCache{}
	}
	return &Service{
		fetcher: fetcher,
		cache:   productCache,
	}
}

type noopCache struct{}

func (noopCache) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) SetProduct(context.Context, *domain.Product) error { return nil }
func (noopCache) GetListing(context.Context) ([]domain.Product, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) SetListing(context.Context, []domain.Product) error { return nil }
func (noopCache) Invalidate(context.Context, int64) error            { return nil }

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("listing", func() (interface{}, error) {
		products, err := s.cache.GetListing(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		products, errFetch := s.fetcher.ListProducts(ctx)
		if errFetch != nil {
			return nil, errFetch
		}

		go func() {
			if errSet := s.cache.SetListing(context.Background(), products); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return products, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(productKey(id), func() (interface{}, error) {
		product, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		product, errFetch := s.fetcher.GetProduct(ctx, id)
		if errFetch != nil {
			return nil, errFetch
		}

		go func() {
			if errSet := s.cache.SetProduct(context.Background(), product); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return product, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
