package http

import (
	"context"
	"sync"

	"delivery-service/internal/domain"
)

// memStore backs all three repositories in memory for handler tests.
type memStore struct {
	mu        sync.Mutex
	products  []domain.Product
	customers []domain.Customer
	orders    []domain.Order
}

type memProducts struct{ s *memStore }
type memCustomers struct{ s *memStore }
type memOrders struct{ s *memStore }

func (r memProducts) Save(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = append(r.s.products, *p)
	return nil
}

func (r memProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Product
	for _, p := range r.s.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r memProducts) FindAll(context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Product(nil), r.s.products...), nil
}

func (r memCustomers) Save(_ context.Context, c *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if existing.Email == c.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.s.customers = append(r.s.customers, *c)
	return nil
}

func (r memCustomers) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCustomers) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCustomers) FindByIDs(_ context.Context, ids []string) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Customer
	for _, c := range r.s.customers {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r memCustomers) FindAll(context.Context) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Customer(nil), r.s.customers...), nil
}

func (r memOrders) Save(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *o
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	r.s.orders = append(r.s.orders, cp)
	return nil
}

func (r memOrders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (r memOrders) FindAll(context.Context) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Order(nil), r.s.orders...), nil
}

func (r memOrders) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id && r.s.orders[i].Status == from {
			r.s.orders[i].Status = to
			return true, nil
		}
	}
	return false, nil
}
