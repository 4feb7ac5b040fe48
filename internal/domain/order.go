package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
)

// Next returns the status that follows s. Delivered orders have no successor.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case StatusPending:
		return StatusInTransit, true
	case StatusInTransit:
		return StatusDelivered, true
	default:
		return "", false
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:char(36) COLLATE utf8mb4_0900_bin"`
	CustomerID  string          `json:"customerId" gorm:"type:char(36) COLLATE utf8mb4_0900_bin;not null;index"`
	Lines       []OrderLine     `json:"products" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"not null;autoCreateTime"`
}

// OrderLine is one (product, count) pair. Lines with the same product are not merged.
type OrderLine struct {
	ID        uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"-" gorm:"type:char(36) COLLATE utf8mb4_0900_bin;not null;index"`
	Position  int    `json:"-" gorm:"not null"`
	ProductID string `json:"productId" gorm:"type:char(36) COLLATE utf8mb4_0900_bin;not null;index"`
	Count     int    `json:"count" gorm:"not null"`
}

// OrderTotal sums price*count over lines. prices is keyed by product id and must hold
// every line's product.
func OrderTotal(lines []OrderLine, prices map[string]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: no price for %s", ErrProductNotFound, l.ProductID)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Count))))
	}
	if total.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: order total %s exceeds %s", ErrInvalidInput, total, MaxAmount)
	}
	return total, nil
}
