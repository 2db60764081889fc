package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"macrame-store/internal/cart"
	"macrame-store/internal/domain"
	"macrame-store/internal/notification"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart = errors.New("cannot place an order with an empty cart")
)

// OrderService records orders at checkout.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, userEmail string, c *cart.Cart) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderItem, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	mailer    notification.Mailer
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, mailer notification.Mailer, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		mailer:    mailer,
		logger:    logger,
	}
}

// PlaceOrder writes an order header and one item row per cart line,
// each line carrying the unit price as a snapshot taken now. On
// success a confirmation email goes out best effort and the cart is
// cleared.
//
// Header and item writes are separate: if an item insert fails after
// the header went in, the header is left orphaned, with no
// compensating delete. Known limitation carried over from the
// storefront; a hardened version would make checkout one atomic write.
//
// Product stock is deliberately not decremented here. Whether checkout
// should reserve stock is an open product decision; do not invent
// reservation semantics in this path.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, userEmail string, c *cart.Cart) (*domain.Order, error) {
	if userID == uuid.Nil {
		return nil, errors.New("order requires an authenticated user")
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := c.Lines()

	order := &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		TotalAmount: c.Subtotal(),
		Status:      domain.OrderStatusUnderReview,
		CreatedAt:   time.Now(),
	}

	if err := s.orderRepo.CreateHeader(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	for _, line := range lines {
		item := &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		}
		if err := s.orderRepo.CreateItem(ctx, item); err != nil {
			s.logger.Error("Order item insert failed, header may be orphaned",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to record order items: %w", err)
		}
	}

	// Confirmation email never blocks order success.
	if err := s.mailer.Send(ctx, notification.TemplateOrderConfirmation, userEmail, map[string]string{
		"order_id": order.ID.String(),
		"total":    strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
	}); err != nil {
		s.logger.Warn("Order confirmation email failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	if err := c.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear cart after order",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.TotalAmount),
		zap.Int("lines", len(lines)),
	)

	return order, nil
}

// GetOrder retrieves an order header with its items.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderItem, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders returns the user's orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
