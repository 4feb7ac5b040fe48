package repository

import (
	"context"

	"delivery-service/internal/domain"
)

// Single-record finders return (nil, nil) when the record does not exist.
// FindByIDs returns whatever subset of ids exists, in no particular order.

type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type CustomerRepository interface {
	// Save reports domain.ErrDuplicateEmail when the email is already taken.
	Save(ctx context.Context, customer *domain.Customer) error
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Customer, error)
	FindAll(ctx context.Context) ([]domain.Customer, error)
}

type OrderRepository interface {
	// Save writes the order and its lines in a single transaction.
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus sets status to `to` only if it is currently `from`.
	// It reports whether a row changed.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
}
