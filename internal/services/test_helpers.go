package services

import (
	"time"

	"delivery-service/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id, customerID string, total int64, status domain.OrderStatus, lines ...domain.OrderLine) *domain.Order {
	return &domain.Order{
		ID:          id,
		CustomerID:  customerID,
		Lines:       lines,
		TotalAmount: decimal.NewFromInt(total),
		Status:      status,
		CreatedAt:   time.Now(),
	}
}

func CreateMockProduct(id, name string, price int64) *domain.Product {
	return &domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.NewFromInt(price),
	}
}

func CreateMockCustomer(id, name, email, address string) *domain.Customer {
	return &domain.Customer{
		ID:      id,
		Name:    name,
		Email:   email,
		Address: address,
	}
}

const (
	TestMilkID       = "6b1f3c1e-0000-4000-8000-000000000001"
	TestBreadID      = "6b1f3c1e-0000-4000-8000-000000000002"
	TestCustomerID   = "6b1f3c1e-0000-4000-8000-0000000000c1"
	TestOrderID      = "6b1f3c1e-0000-4000-8000-0000000000a1"
	TestEmail        = "a@b.com"
	TestCustomerName = "Anna"
	TestAddress      = "Moscow, Tverskaya, 7, 12"
)
