package domain

import (
	"github.com/google/uuid"
)

// CartItem is one line of a cart: a product projection with a quantity.
// Identity for merge and update purposes is the product ID.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
	Quantity  int       `json:"quantity"`
}

// LineTotal returns price times quantity for this line.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
