package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"delivery-service/internal/domain"
	"delivery-service/internal/infra"
	rabbit "delivery-service/internal/infra/rabbitmq"
	"delivery-service/internal/metrics"
	"delivery-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Lifecycle starts the deferred status transitions of a new order.
type Lifecycle interface {
	Begin(ctx context.Context, orderID string) error
}

type LineInput struct {
	ProductID string
	Count     int
}

type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Lines           []LineInput
}

func (in CreateOrderInput) validate() error {
	switch {
	case strings.TrimSpace(in.CustomerName) == "":
		return fmt.Errorf("%w: customerName is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.CustomerEmail) == "":
		return fmt.Errorf("%w: customerEmail is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.CustomerAddress) == "":
		return fmt.Errorf("%w: customerAddress is required", domain.ErrInvalidInput)
	case len(in.Lines) == 0:
		return fmt.Errorf("%w: products must not be empty", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return fmt.Errorf("%w: products[%d].productId is required", domain.ErrInvalidInput, i)
		}
		if l.Count <= 0 {
			return fmt.Errorf("%w: products[%d].count must be positive", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	publisher rabbit.PublisherInterface
	lifecycle Lifecycle
	cache     infra.ProductCache
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	pub rabbit.PublisherInterface,
	lc Lifecycle,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		customers: customers,
		publisher: pub,
		lifecycle: lc,
		now:       time.Now,
	}
}

func (u *OrderService) SetProductCache(cache infra.ProductCache) {
	u.cache = cache
}

func (u *OrderService) SetMetrics(m *metrics.Metrics) {
	u.metrics = m
}

// CreateOrder persists a pending order and returns it with customer and products expanded.
//
// An existing customer is reused as stored; the name and address in the input are ignored
// for them. A customer created here is kept even if product resolution then fails.
func (u *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	customer, err := u.findOrCreateCustomer(ctx, in)
	if err != nil {
		return nil, err
	}

	products, err := u.resolveProducts(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(products))
	for id, p := range products {
		prices[id] = p.Price
	}

	order := &domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Lines:      make([]domain.OrderLine, 0, len(in.Lines)),
		Status:     domain.StatusPending,
		CreatedAt:  u.now().UTC(),
	}
	for _, l := range in.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{ProductID: l.ProductID, Count: l.Count})
	}
	if order.TotalAmount, err = domain.OrderTotal(order.Lines, prices); err != nil {
		return nil, err
	}

	if err := u.orders.Save(ctx, order); err != nil {
		return nil, storageErr("save order", err)
	}
	u.metrics.OrderCreated()

	go u.publishOrderCreatedEvent(context.Background(), order)

	// the order exists at this point; a scheduling failure only stalls its status
	if err := u.lifecycle.Begin(context.WithoutCancel(ctx), order.ID); err != nil {
		log.Printf("order %s: start lifecycle: %v", order.ID, err)
	}

	return expandOrder(*order, customer, products), nil
}

func (u *OrderService) findOrCreateCustomer(ctx context.Context, in CreateOrderInput) (*domain.Customer, error) {
	existing, err := u.customers.FindByEmail(ctx, in.CustomerEmail)
	if err != nil {
		return nil, storageErr("find customer", err)
	}
	// the match must be exact, whatever the column collation
	if existing != nil && existing.Email == in.CustomerEmail {
		return existing, nil
	}

	customer := &domain.Customer{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.CustomerName),
		Email:   in.CustomerEmail,
		Address: strings.TrimSpace(in.CustomerAddress),
	}
	err = u.customers.Save(ctx, customer)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// lost a race with a concurrent first order for the same email
		winner, findErr := u.customers.FindByEmail(ctx, in.CustomerEmail)
		if findErr != nil {
			return nil, storageErr("find customer", findErr)
		}
		if winner != nil && winner.Email == in.CustomerEmail {
			return winner, nil
		}
	}
	if err != nil {
		return nil, storageErr("save customer", err)
	}
	return customer, nil
}

// resolveProducts loads every distinct product of the cart concurrently. A single
// unknown id fails the whole call.
func (u *OrderService) resolveProducts(ctx context.Context, lines []LineInput) (map[string]*domain.Product, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}

	found := make([]*domain.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := u.getProductWithCache(gctx, id)
			if err != nil {
				return storageErr("find product", err)
			}
			// a store lookup may ignore case or trailing spaces; ids match exactly
			if p == nil || p.ID != id {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
			}
			found[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*domain.Product, len(ids))
	for _, p := range found {
		out[p.ID] = p
	}
	return out, nil
}

func (u *OrderService) getProductWithCache(ctx context.Context, id string) (*domain.Product, error) {
	if u.cache != nil {
		cached, err := u.cache.Get(ctx, id)
		if err != nil {
			log.Printf("product cache get %s: %v", id, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.cache != nil && p != nil {
		if err := u.cache.Set(ctx, p); err != nil {
			log.Printf("product cache set %s: %v", id, err)
		}
	}
	return p, nil
}

func (u *OrderService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
		Lines:       len(order.Lines),
		CreatedAt:   order.CreatedAt,
	}
	if err := u.publisher.Publish(ctx, domain.EventOrderCreated, evt); err != nil {
		log.Printf("order %s: publish %s: %v", order.ID, domain.EventOrderCreated, err)
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
