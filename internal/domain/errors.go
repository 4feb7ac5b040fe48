package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateEmail  = errors.New("customer email already exists")
	ErrStorage         = errors.New("storage error")
)
