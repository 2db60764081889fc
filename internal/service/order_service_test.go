package service

import (
	"context"
	"errors"
	"testing"

	"macrame-store/internal/cart"
	"macrame-store/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memCartBackend backs a cart view in memory for checkout tests.
type memCartBackend struct {
	items []domain.CartItem
}

func (b *memCartBackend) Load(ctx context.Context) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, len(b.items))
	copy(out, b.items)
	return out, nil
}

func (b *memCartBackend) Add(ctx context.Context, item domain.CartItem) error {
	b.items = append(b.items, item)
	return nil
}

func (b *memCartBackend) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	for i := range b.items {
		if b.items[i].ProductID == productID {
			b.items[i].Quantity = quantity
		}
	}
	return nil
}

func (b *memCartBackend) Remove(ctx context.Context, productID uuid.UUID) error {
	return nil
}

func (b *memCartBackend) Clear(ctx context.Context) error {
	b.items = nil
	return nil
}

// fakeOrderRepository records header and item writes, failing item
// inserts on demand to exercise the orphaned-header path.
type fakeOrderRepository struct {
	headers       []*domain.Order
	items         []*domain.OrderItem
	failOnProduct uuid.UUID
}

var errItemInsert = errors.New("item insert failed")

func (f *fakeOrderRepository) CreateHeader(ctx context.Context, order *domain.Order) error {
	f.headers = append(f.headers, order)
	return nil
}

func (f *fakeOrderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	if item.ProductID == f.failOnProduct {
		return errItemInsert
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderItem, error) {
	for _, h := range f.headers {
		if h.ID == id {
			items := []domain.OrderItem{}
			for _, it := range f.items {
				if it.OrderID == id {
					items = append(items, *it)
				}
			}
			return h, items, nil
		}
	}
	return nil, nil, errors.New("order not found")
}

func (f *fakeOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, h := range f.headers {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	sent []string
	fail bool
}

func (f *fakeMailer) Send(ctx context.Context, template, to string, data map[string]string) error {
	if f.fail {
		return errors.New("mail provider down")
	}
	f.sent = append(f.sent, template+":"+to)
	return nil
}

func loadTestCart(t *testing.T, items []domain.CartItem) (*cart.Cart, *memCartBackend) {
	t.Helper()
	backend := &memCartBackend{items: items}
	c, err := cart.Load(context.Background(), backend)
	if err != nil {
		t.Fatalf("Failed to load cart: %v", err)
	}
	return c, backend
}

func TestPlaceOrderSnapshotsPricesAndTotal(t *testing.T) {
	repo := &fakeOrderRepository{}
	mailer := &fakeMailer{}
	logger, _ := zap.NewDevelopment()
	svc := NewOrderService(repo, mailer, logger)

	firstProduct := uuid.New()
	secondProduct := uuid.New()
	c, backend := loadTestCart(t, []domain.CartItem{
		{ProductID: firstProduct, Name: "wall hanging", Price: 10.00, Quantity: 2},
		{ProductID: secondProduct, Name: "coaster set", Price: 5.00, Quantity: 1},
	})

	userID := uuid.New()
	order, err := svc.PlaceOrder(context.Background(), userID, "buyer@example.com", c)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.TotalAmount != 25.00 {
		t.Errorf("Expected total 25.00, got %f", order.TotalAmount)
	}
	if order.Status != domain.OrderStatusUnderReview {
		t.Errorf("Expected initial status %q, got %q", domain.OrderStatusUnderReview, order.Status)
	}
	if order.UserID != userID {
		t.Errorf("Order bound to wrong user: %s", order.UserID)
	}

	if len(repo.items) != 2 {
		t.Fatalf("Expected two item rows, got %d", len(repo.items))
	}
	for _, item := range repo.items {
		if item.OrderID != order.ID {
			t.Errorf("Item row not bound to the order header: %+v", item)
		}
		switch item.ProductID {
		case firstProduct:
			if item.UnitPrice != 10.00 || item.Quantity != 2 {
				t.Errorf("First line snapshot wrong: %+v", item)
			}
		case secondProduct:
			if item.UnitPrice != 5.00 || item.Quantity != 1 {
				t.Errorf("Second line snapshot wrong: %+v", item)
			}
		default:
			t.Errorf("Unexpected product in order items: %s", item.ProductID)
		}
	}

	if len(mailer.sent) != 1 {
		t.Errorf("Expected one confirmation email, got %d", len(mailer.sent))
	}
	if !c.IsEmpty() || len(backend.items) != 0 {
		t.Error("Cart should be cleared after a successful order")
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	repo := &fakeOrderRepository{}
	logger, _ := zap.NewDevelopment()
	svc := NewOrderService(repo, &fakeMailer{}, logger)

	c, _ := loadTestCart(t, nil)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), "buyer@example.com", c)
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
	if len(repo.headers) != 0 {
		t.Error("No header should be written for an empty cart")
	}
}

func TestPlaceOrderItemFailureLeavesHeaderOrphaned(t *testing.T) {
	repo := &fakeOrderRepository{}
	logger, _ := zap.NewDevelopment()
	svc := NewOrderService(repo, &fakeMailer{}, logger)

	okProduct := uuid.New()
	badProduct := uuid.New()
	repo.failOnProduct = badProduct

	c, backend := loadTestCart(t, []domain.CartItem{
		{ProductID: okProduct, Price: 10, Quantity: 1},
		{ProductID: badProduct, Price: 20, Quantity: 1},
	})

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), "buyer@example.com", c)
	if err == nil {
		t.Fatal("Expected PlaceOrder to fail on the second item")
	}

	// The header write and item writes are separate, so the header
	// stays behind with only a partial set of items.
	if len(repo.headers) != 1 {
		t.Errorf("Expected the header row to remain, got %d headers", len(repo.headers))
	}
	if len(repo.items) != 1 {
		t.Errorf("Expected one item row written before the failure, got %d", len(repo.items))
	}

	if c.IsEmpty() || len(backend.items) != 2 {
		t.Error("Cart should not be cleared when the order fails")
	}
}

func TestPlaceOrderMailFailureDoesNotFailOrder(t *testing.T) {
	repo := &fakeOrderRepository{}
	mailer := &fakeMailer{fail: true}
	logger, _ := zap.NewDevelopment()
	svc := NewOrderService(repo, mailer, logger)

	c, _ := loadTestCart(t, []domain.CartItem{
		{ProductID: uuid.New(), Price: 15, Quantity: 1},
	})

	order, err := svc.PlaceOrder(context.Background(), uuid.New(), "buyer@example.com", c)
	if err != nil {
		t.Fatalf("PlaceOrder should succeed despite the mail failure, got %v", err)
	}
	if order == nil || len(repo.headers) != 1 {
		t.Error("Order should be recorded")
	}
	if !c.IsEmpty() {
		t.Error("Cart should be cleared")
	}
}

func TestPlaceOrderRequiresUser(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := NewOrderService(&fakeOrderRepository{}, &fakeMailer{}, logger)

	c, _ := loadTestCart(t, []domain.CartItem{
		{ProductID: uuid.New(), Price: 15, Quantity: 1},
	})

	if _, err := svc.PlaceOrder(context.Background(), uuid.Nil, "", c); err == nil {
		t.Error("Expected an error for the nil user")
	}
}
