package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository writes order headers and their line items. Header and
// items are separate calls on purpose: the checkout flow documents the
// orphaned-header risk instead of hiding it behind a transaction.
type OrderRepository interface {
	CreateHeader(ctx context.Context, order *domain.Order) error
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateHeader inserts the order header row.
func (r *orderRepository) CreateHeader(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.TotalAmount,
		order.Status,
		order.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// CreateItem inserts one order line with its unit price snapshot.
func (r *orderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
	)

	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// FindByID retrieves an order header and its items.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderItem, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// ListByUser returns the user's order headers, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.Status, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
