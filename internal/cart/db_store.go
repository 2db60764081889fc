package cart

import (
	"context"
	"errors"

	"macrame-store/internal/domain"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
)

// DBStore adapts the cart_items repository into a Backend for one
// authenticated user. Add keeps the one-row-per-(user, product)
// invariant with the same find-then-update-or-insert sequence the
// storefront has always used, rather than a database-level upsert.
type DBStore struct {
	repo   repository.CartRepository
	userID uuid.UUID
}

// NewDBStore binds a store to one user's server-side cart.
func NewDBStore(repo repository.CartRepository, userID uuid.UUID) *DBStore {
	return &DBStore{repo: repo, userID: userID}
}

// Load returns the user's cart rows joined with the product projection.
func (s *DBStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	return s.repo.ListByUser(ctx, s.userID)
}

// Add increments the existing row's quantity or inserts a new row.
func (s *DBStore) Add(ctx context.Context, item domain.CartItem) error {
	existing, err := s.repo.FindQuantity(ctx, s.userID, item.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return s.repo.Insert(ctx, s.userID, item.ProductID, item.Quantity)
		}
		return err
	}

	return s.repo.SetQuantity(ctx, s.userID, item.ProductID, existing+item.Quantity)
}

// SetQuantity overwrites the row's quantity.
func (s *DBStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	return s.repo.SetQuantity(ctx, s.userID, productID, quantity)
}

// Remove deletes the row; deleting a missing row is not an error.
func (s *DBStore) Remove(ctx context.Context, productID uuid.UUID) error {
	return s.repo.Delete(ctx, s.userID, productID)
}

// Clear removes every row of the user's cart.
func (s *DBStore) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx, s.userID)
}
