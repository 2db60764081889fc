package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is the anonymous cart store: the whole cart is one
// serialized JSON list under a fixed key per cart token, the
// server-side equivalent of the browser's local-storage cart. Entries
// expire after the configured TTL so abandoned anonymous carts age out.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	token     string
	ttl       time.Duration
}

// NewRedisStore binds a store to one anonymous cart token.
func NewRedisStore(client *redis.Client, keyPrefix, token string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		token:     token,
		ttl:       ttl,
	}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, s.token)
}

// Load reads and decodes the serialized cart. A missing key is an
// empty cart. A corrupt value is also treated as empty, matching how
// the storefront recovers from an unparseable local-storage entry.
func (s *RedisStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load anonymous cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return []domain.CartItem{}, nil
	}
	return items, nil
}

func (s *RedisStore) save(ctx context.Context, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode anonymous cart: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save anonymous cart: %w", err)
	}
	return nil
}

// Add merges the item into the serialized list and rewrites it.
func (s *RedisStore) Add(ctx context.Context, item domain.CartItem) error {
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	return s.save(ctx, items)
}

// SetQuantity overwrites one line's quantity.
func (s *RedisStore) SetQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return s.save(ctx, items)
		}
	}
	return nil
}

// Remove drops one line.
func (s *RedisStore) Remove(ctx context.Context, productID uuid.UUID) error {
	items, err := s.Load(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items = append(items[:i], items[i+1:]...)
			return s.save(ctx, items)
		}
	}
	return nil
}

// Clear deletes the key entirely. Clearing a missing key succeeds.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear anonymous cart: %w", err)
	}
	return nil
}
