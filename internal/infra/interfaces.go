package infra

import (
	"context"

	"delivery-service/internal/domain"
)

// ProductCache is a read-through cache in front of the catalog. Get returns (nil, nil)
// on a miss.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
}

type CatalogClientInterface interface {
	AddProducts(ctx context.Context, products []NewProduct) (*AddProductsResult, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

var _ CatalogClientInterface = (*CatalogClient)(nil)
