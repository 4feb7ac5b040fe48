package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Lines       int             `json:"lines"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}
