package cache

import (
	"context"
	"errors"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// ProductCache sits between the storefront and the catalog REST
// backend. Consumers define this interface, not the Redis
// implementation.
type ProductCache interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	GetListing(ctx context.Context) ([]domain.Product, error)
	SetListing(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context, id int64) error
}

var ErrCacheMiss = errors.New("cache miss")
