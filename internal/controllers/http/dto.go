package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"delivery-service/internal/domain"
	"delivery-service/internal/services"

	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Count     int    `json:"count" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Products        []OrderLineRequest `json:"products" binding:"required,min=1,dive"`
	CustomerName    string             `json:"customerName" binding:"required"`
	CustomerEmail   string             `json:"customerEmail" binding:"required"`
	CustomerAddress AddressInput       `json:"customerAddress"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	in := services.CreateOrderInput{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress.Value,
		Lines:           make([]services.LineInput, 0, len(r.Products)),
	}
	for _, p := range r.Products {
		in.Lines = append(in.Lines, services.LineInput{ProductID: p.ProductID, Count: p.Count})
	}
	return in
}

type CreateOrderResponse struct {
	Message string              `json:"message"`
	Order   *services.OrderView `json:"order"`
}

type ProductRequest struct {
	Name  string           `json:"name" binding:"required"`
	Price *decimal.Decimal `json:"price" binding:"required"`
}

type AddProductsResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

var errAddressFormat = errors.New("customerAddress must be a string or an object with city, street, house, apartment")

// AddressInput accepts either a ready address string or its parts, which are joined
// with ", ".
type AddressInput struct {
	Value string
}

func (a *AddressInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		a.Value = strings.TrimSpace(s)
		return nil
	}

	var parts struct {
		City      flexString `json:"city"`
		Street    flexString `json:"street"`
		House     flexString `json:"house"`
		Apartment flexString `json:"apartment"`
	}
	if err := json.Unmarshal(b, &parts); err != nil {
		return errAddressFormat
	}
	a.Value = domain.ComposeAddress(string(parts.City), string(parts.Street), string(parts.House), string(parts.Apartment))
	return nil
}

// flexString takes a JSON string or number; house and apartment often arrive as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
