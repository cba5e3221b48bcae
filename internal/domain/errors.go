package domain

import "errors"

var (
	ErrInvalidProduct       = errors.New("invalid product")
	ErrInvalidExpense       = errors.New("invalid expense")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
)
