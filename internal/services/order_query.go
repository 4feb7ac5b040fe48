package services

import (
	"context"
	"time"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// OrderView is an order with its customer and line products expanded. Product is nil when
// the referenced product no longer resolves.
type OrderView struct {
	ID          string             `json:"id"`
	Products    []OrderLineView    `json:"products"`
	Customer    *domain.Customer   `json:"customer"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      domain.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type OrderLineView struct {
	Product *domain.Product `json:"product"`
	Count   int             `json:"count"`
}

type OrderDetail struct {
	ID          string             `json:"id"`
	Customer    CustomerContact    `json:"customer"`
	Products    []OrderDetailLine  `json:"products"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      domain.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type CustomerContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// OrderDetailLine prices the line with the product's current price, so it may disagree
// with the order's stored TotalAmount.
type OrderDetailLine struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderQuery struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
}

func NewOrderQuery(orders repository.OrderRepository, products repository.ProductRepository, customers repository.CustomerRepository) *OrderQuery {
	return &OrderQuery{orders: orders, products: products, customers: customers}
}

func (q *OrderQuery) List(ctx context.Context) ([]OrderView, error) {
	orders, err := q.orders.FindAll(ctx)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	return q.join(ctx, orders)
}

func (q *OrderQuery) Detail(ctx context.Context, id string) (*OrderDetail, error) {
	o, err := q.orders.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr("find order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}

	views, err := q.join(ctx, []domain.Order{*o})
	if err != nil {
		return nil, err
	}
	return flatten(views[0]), nil
}

// join fetches every product and customer referenced by orders in two bulk reads and
// expands the orders with them.
func (q *OrderQuery) join(ctx context.Context, orders []domain.Order) ([]OrderView, error) {
	var productIDs, customerIDs []string
	seenP := map[string]struct{}{}
	seenC := map[string]struct{}{}
	for _, o := range orders {
		if _, ok := seenC[o.CustomerID]; !ok {
			seenC[o.CustomerID] = struct{}{}
			customerIDs = append(customerIDs, o.CustomerID)
		}
		for _, l := range o.Lines {
			if _, ok := seenP[l.ProductID]; !ok {
				seenP[l.ProductID] = struct{}{}
				productIDs = append(productIDs, l.ProductID)
			}
		}
	}

	var (
		products  []domain.Product
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = q.products.FindByIDs(gctx, productIDs); err != nil {
			return storageErr("find products", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if customers, err = q.customers.FindByIDs(gctx, customerIDs); err != nil {
			return storageErr("find customers", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productByID := make(map[string]*domain.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}
	customerByID := make(map[string]*domain.Customer, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = &customers[i]
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, *expandOrder(o, customerByID[o.CustomerID], productByID))
	}
	return views, nil
}

func expandOrder(o domain.Order, customer *domain.Customer, products map[string]*domain.Product) *OrderView {
	lines := make([]OrderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineView{Product: products[l.ProductID], Count: l.Count})
	}
	return &OrderView{
		ID:          o.ID,
		Products:    lines,
		Customer:    customer,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}

func flatten(v OrderView) *OrderDetail {
	d := &OrderDetail{
		ID:          v.ID,
		Products:    make([]OrderDetailLine, 0, len(v.Products)),
		TotalAmount: v.TotalAmount,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
	if v.Customer != nil {
		d.Customer = CustomerContact{Name: v.Customer.Name, Email: v.Customer.Email, Address: v.Customer.Address}
	}
	for _, l := range v.Products {
		line := OrderDetailLine{Count: l.Count, Price: decimal.Zero, TotalAmount: decimal.Zero}
		if l.Product != nil {
			line.Name = l.Product.Name
			line.Price = l.Product.Price
			line.TotalAmount = l.Product.Price.Mul(decimal.NewFromInt(int64(l.Count)))
		}
		d.Products = append(d.Products, line)
	}
	return d
}
