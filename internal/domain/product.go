package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, like the rest of the API
	decimal.MarshalJSONWithoutQuotes = true
}

// Money columns are decimal(12,2).
const AmountScale = 2

var MaxAmount = decimal.RequireFromString("9999999999.99")

type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;type:char(36) COLLATE utf8mb4_0900_bin"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"-" gorm:"autoCreateTime"`
}

// CheckPrice reports ErrInvalidInput for a price the price column cannot hold exactly.
func CheckPrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case !price.Equal(price.Truncate(AmountScale)):
		return fmt.Errorf("%w: price %s has more than %d decimal places", ErrInvalidInput, price, AmountScale)
	case price.GreaterThan(MaxAmount):
		return fmt.Errorf("%w: price %s exceeds %s", ErrInvalidInput, price, MaxAmount)
	}
	return nil
}
