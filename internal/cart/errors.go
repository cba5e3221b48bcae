package cart

import "errors"

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInsufficientStock = errors.New("insufficient stock")
)
