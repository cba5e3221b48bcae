package command

import "errors"

var (
	ErrDuplicateSKU = errors.New("SKU already exists")
	ErrEmptyOrder   = errors.New("order has no lines")
)
