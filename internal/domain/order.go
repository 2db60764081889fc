package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus enumerates the lifecycle states of an order. Orders are
// immutable once created in this service; status transitions belong to
// the fulfillment back office, which is out of scope.
type OrderStatus string

const (
	// OrderStatusUnderReview is the initial status of every new order.
	// The value is kept verbatim from the storefront's order table.
	OrderStatusUnderReview OrderStatus = "em_analise"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

// Order is the header row written at checkout. TotalAmount is the sum
// of line totals at creation time.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// OrderItem is one order line. UnitPrice is a snapshot of the product
// price at order time, decoupled from later catalog price changes.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
}
