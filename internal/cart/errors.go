package cart

import "errors"

var (
	// ErrInvalidQuantity is returned when a mutation is asked for a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)
