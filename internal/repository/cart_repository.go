package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository is the server-side cart store: one row per
// (user, product) pair. The pair invariant is maintained by
// find-then-update-or-insert in the callers, with a unique index as a
// backstop.
type CartRepository interface {
	FindQuantity(ctx context.Context, userID, productID uuid.UUID) (int, error)
	Insert(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// FindQuantity returns the stored quantity for the (user, product)
// pair, or ErrCartItemNotFound when no row exists.
func (r *cartRepository) FindQuantity(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	query := `
		SELECT quantity
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	var quantity int
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrCartItemNotFound
		}
		return 0, fmt.Errorf("failed to find cart item: %w", err)
	}

	return quantity, nil
}

// Insert creates a new cart row for the pair.
func (r *cartRepository) Insert(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, productID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

// SetQuantity overwrites the quantity of an existing row.
func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = $4
		WHERE user_id = $1 AND product_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, productID, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Delete removes the row for the pair. Deleting a missing row is not
// an error.
func (r *cartRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	_, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// Clear removes every cart row of the user.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

// ListByUser returns the user's cart joined with the product
// projection, oldest line first. Rows whose product has been deleted
// from the catalog are dropped by the join.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT c.product_id, p.name, p.price, COALESCE(p.images->>0, ''), c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.ImageURL,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
