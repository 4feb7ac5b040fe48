package services

import (
	"context"
	"fmt"
	"strings"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name  string
	Price decimal.Decimal
}

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// AddProducts validates the whole batch, then inserts products one at a time. Inserts are
// independent: on failure the products saved so far stay, and their count is returned
// with the error.
func (s *CatalogService) AddProducts(ctx context.Context, in []ProductInput) (int, error) {
	for i, p := range in {
		if strings.TrimSpace(p.Name) == "" {
			return 0, fmt.Errorf("%w: products[%d].name is required", domain.ErrInvalidInput, i)
		}
		if err := domain.CheckPrice(p.Price); err != nil {
			return 0, fmt.Errorf("products[%d]: %w", i, err)
		}
	}

	for i, p := range in {
		product := &domain.Product{
			ID:    uuid.NewString(),
			Name:  strings.TrimSpace(p.Name),
			Price: p.Price,
		}
		if err := s.products.Save(ctx, product); err != nil {
			return i, storageErr(fmt.Sprintf("save product %q", product.Name), err)
		}
	}
	return len(in), nil
}
