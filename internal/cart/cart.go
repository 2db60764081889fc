// Package cart holds the cart view-model and its backing stores. A
// Cart is the single source of truth for what a session sees as "the
// cart"; the backend it is bound to (Redis for anonymous sessions,
// Postgres rows for authenticated users) is kept in step with every
// mutation.
package cart

import (
	"context"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

// Backend is the persistence contract behind a cart view. Add must
// increment the quantity when a line for the product already exists.
type Backend interface {
	Load(ctx context.Context) ([]domain.CartItem, error)
	Add(ctx context.Context, item domain.CartItem) error
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, productID uuid.UUID) error
	Clear(ctx context.Context) error
}

// Cart is an ordered list of line items bound to a backend. Mutations
// persist first and only then commit to the in-memory view, so a
// failed write leaves the view untouched and returns the error instead
// of silently diverging from the store.
type Cart struct {
	backend Backend
	lines   []domain.CartItem
}

// Load builds a cart view from whatever the backend currently holds.
func Load(ctx context.Context, backend Backend) (*Cart, error) {
	lines, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Cart{backend: backend, lines: lines}, nil
}

// Lines returns a copy of the current view in insertion order.
func (c *Cart) Lines() []domain.CartItem {
	out := make([]domain.CartItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the view has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Subtotal sums price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, line := range c.lines {
		total += line.LineTotal()
	}
	return total
}

func (c *Cart) find(productID uuid.UUID) int {
	for i, line := range c.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds quantity units of the product. An existing line for the
// same product grows by the given amount; otherwise a new line is
// appended, preserving insertion order. Quantity must be positive. No
// upper bound is enforced against stock.
func (c *Cart) AddItem(ctx context.Context, product *domain.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	item := domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.CoverImage(),
		Quantity:  quantity,
	}

	if err := c.backend.Add(ctx, item); err != nil {
		return err
	}

	if i := c.find(product.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, item)
	}
	return nil
}

// RemoveItem deletes the line for the product. Removing a product that
// is not in the cart is a no-op, not an error.
func (c *Cart) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	i := c.find(productID)
	if i < 0 {
		return nil
	}

	if err := c.backend.Remove(ctx, productID); err != nil {
		return err
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// UpdateQuantity applies a delta to the line's quantity, clamped to a
// minimum of 1: this path can never drop a line below one unit, use
// RemoveItem to delete. Unknown products are a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, productID uuid.UUID, delta int) error {
	i := c.find(productID)
	if i < 0 {
		return nil
	}

	newQuantity := c.lines[i].Quantity + delta
	if newQuantity < 1 {
		newQuantity = 1
	}

	if err := c.backend.SetQuantity(ctx, productID, newQuantity); err != nil {
		return err
	}

	c.lines[i].Quantity = newQuantity
	return nil
}

// Clear empties the view and the backing store. Clearing an already
// empty cart succeeds.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.backend.Clear(ctx); err != nil {
		return err
	}

	c.lines = c.lines[:0]
	return nil
}
