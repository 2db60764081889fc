package cart

import (
	"context"
	"testing"
	"time"

	"macrame-store/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "cart:anon", "token-1", time.Hour), mr
}

func TestRedisStoreLoadMissingKeyIsEmpty(t *testing.T) {
	store, _ := newTestRedisStore(t)

	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}

func TestRedisStoreAddAndLoadRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	item := domain.CartItem{
		ProductID: uuid.New(),
		Name:      "plant hanger",
		Price:     42.90,
		Quantity:  2,
	}

	if err := store.Add(ctx, item); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A second add of the same product grows the line.
	if err := store.Add(ctx, domain.CartItem{ProductID: item.ProductID, Name: item.Name, Price: item.Price, Quantity: 3}); err != nil {
		t.Fatalf("Second add failed: %v", err)
	}

	items, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected one line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", items[0].Quantity)
	}
	if items[0].Name != "plant hanger" || items[0].Price != 42.90 {
		t.Errorf("Line lost its product snapshot: %+v", items[0])
	}
}

func TestRedisStoreSetsTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, domain.CartItem{ProductID: uuid.New(), Quantity: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ttl := mr.TTL("cart:anon:token-1")
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("Expected TTL in (0, 1h], got %v", ttl)
	}
}

func TestRedisStoreCorruptValueIsEmptyCart(t *testing.T) {
	store, mr := newTestRedisStore(t)

	mr.Set("cart:anon:token-1", "{not json")

	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load should recover from a corrupt value, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Corrupt value should read as an empty cart, got %d items", len(items))
	}
}

func TestRedisStoreRemoveAndClear(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	if err := store.Add(ctx, domain.CartItem{ProductID: first, Quantity: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(ctx, domain.CartItem{ProductID: second, Quantity: 2}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Remove(ctx, first); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	items, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != second {
		t.Errorf("Expected only the second line to remain: %+v", items)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mr.Exists("cart:anon:token-1") {
		t.Error("Clear should delete the key")
	}

	// Clearing again still succeeds.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clearing a missing key should succeed, got %v", err)
	}
}

func TestRedisStoreSetQuantityUnknownProductIsNoOp(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.SetQuantity(ctx, uuid.New(), 5); err != nil {
		t.Errorf("SetQuantity on an unknown product should succeed, got %v", err)
	}

	items, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Store should stay empty, got %d items", len(items))
	}
}
