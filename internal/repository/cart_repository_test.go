package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCartUser(t *testing.T) uuid.UUID {
	t.Helper()

	repo := NewProfileRepository(testDB)
	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        "cart-" + uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), profile))

	t.Cleanup(func() {
		testDB.Exec("DELETE FROM profiles WHERE id = $1", profile.ID)
	})

	return profile.ID
}

func TestCartRowLifecycle(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	product := seedProduct(t, "Dream catcher", 55.90, []string{"/uploads/dc.jpg"})

	_, err := repo.FindQuantity(ctx, userID, product.ID)
	assert.True(t, errors.Is(err, ErrCartItemNotFound))

	require.NoError(t, repo.Insert(ctx, userID, product.ID, 2))

	quantity, err := repo.FindQuantity(ctx, userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)

	require.NoError(t, repo.SetQuantity(ctx, userID, product.ID, 5))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ProductID)
	assert.Equal(t, "Dream catcher", items[0].Name)
	assert.Equal(t, 55.90, items[0].Price)
	assert.Equal(t, "/uploads/dc.jpg", items[0].ImageURL)
	assert.Equal(t, 5, items[0].Quantity)

	require.NoError(t, repo.Delete(ctx, userID, product.ID))

	_, err = repo.FindQuantity(ctx, userID, product.ID)
	assert.True(t, errors.Is(err, ErrCartItemNotFound))

	// Deleting an absent row is a no-op.
	assert.NoError(t, repo.Delete(ctx, userID, product.ID))
}

func TestCartRejectsDuplicateProductRows(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	product := seedProduct(t, "Garland", 30, nil)

	require.NoError(t, repo.Insert(ctx, userID, product.ID, 1))
	assert.Error(t, repo.Insert(ctx, userID, product.ID, 1))
}

func TestCartListKeepsInsertionOrder(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	first := seedProduct(t, "Curtain", 150, nil)
	second := seedProduct(t, "Bag", 90, nil)

	require.NoError(t, repo.Insert(ctx, userID, first.ID, 1))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Insert(ctx, userID, second.ID, 1))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ProductID)
	assert.Equal(t, second.ID, items[1].ProductID)
}

func TestCartQuantityBelowOneIsRejectedByTheSchema(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	product := seedProduct(t, "Bracelet", 12, nil)

	assert.Error(t, repo.Insert(ctx, userID, product.ID, 0))
}

func TestClearRemovesEveryRowOfTheUser(t *testing.T) {
	repo := NewCartRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	otherUserID := seedCartUser(t)
	product := seedProduct(t, "Lampshade", 200, nil)

	require.NoError(t, repo.Insert(ctx, userID, product.ID, 1))
	require.NoError(t, repo.Insert(ctx, otherUserID, product.ID, 3))

	require.NoError(t, repo.Clear(ctx, userID))

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Other users' carts are untouched.
	otherItems, err := repo.ListByUser(ctx, otherUserID)
	require.NoError(t, err)
	assert.Len(t, otherItems, 1)
}

func TestDeletingAProductCascadesIntoCarts(t *testing.T) {
	cartRepo := NewCartRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	userID := seedCartUser(t)
	product := seedProduct(t, "Doomed product", 10, nil)

	require.NoError(t, cartRepo.Insert(ctx, userID, product.ID, 1))
	require.NoError(t, productRepo.Delete(ctx, product.ID))

	items, err := cartRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
