// Package errors holds the sentinel errors of the inventory domain.
package errors

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	// ErrDuplicateProductID means the generated ID is already taken, usually by a second process sharing the database.
	ErrDuplicateProductID = errors.New("product id already exists")
)
