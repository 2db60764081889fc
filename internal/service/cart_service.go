package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"macrame-store/internal/cart"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrEmptyAnonymousCart = errors.New("anonymous cart is empty")
)

// CartService builds cart views for sessions and reconciles anonymous
// carts into user carts on login.
type CartService interface {
	CartForUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	CartForToken(ctx context.Context, token string) (*cart.Cart, error)
	MergeAnonymous(ctx context.Context, token string, userID uuid.UUID) (*cart.Cart, error)
}

type cartService struct {
	cartRepo  repository.CartRepository
	redis     *redis.Client
	keyPrefix string
	anonTTL   time.Duration
	logger    *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartRepository,
	redisClient *redis.Client,
	keyPrefix string,
	anonTTL time.Duration,
	logger *zap.Logger,
) CartService {
	return &cartService{
		cartRepo:  cartRepo,
		redis:     redisClient,
		keyPrefix: keyPrefix,
		anonTTL:   anonTTL,
		logger:    logger,
	}
}

// CartForUser loads the authenticated user's server-side cart.
func (s *cartService) CartForUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := cart.Load(ctx, cart.NewDBStore(s.cartRepo, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load user cart: %w", err)
	}
	return c, nil
}

// CartForToken loads the anonymous cart behind a client-held token.
func (s *cartService) CartForToken(ctx context.Context, token string) (*cart.Cart, error) {
	c, err := cart.Load(ctx, cart.NewRedisStore(s.redis, s.keyPrefix, token, s.anonTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to load anonymous cart: %w", err)
	}
	return c, nil
}

// MergeAnonymous folds a non-empty anonymous cart into the user's
// server-side cart, once per anonymous-to-authenticated transition.
//
// Each local line is processed sequentially: an existing (user,
// product) row has the local quantity added to it, a missing one is
// inserted. Only after the whole loop succeeds is the anonymous store
// cleared and the user's cart re-fetched as the authoritative result.
//
// The merge is NOT transactional. A failure mid-loop leaves earlier
// lines already merged and the anonymous store intact (it is cleared
// only after a full pass), so a retry can double-count those lines on
// the server. Known limitation, kept from the storefront's behavior;
// a hardened version would wrap the loop in a single atomic operation.
func (s *cartService) MergeAnonymous(ctx context.Context, token string, userID uuid.UUID) (*cart.Cart, error) {
	anonStore := cart.NewRedisStore(s.redis, s.keyPrefix, token, s.anonTTL)

	localItems, err := anonStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load anonymous cart: %w", err)
	}
	if len(localItems) == 0 {
		return nil, ErrEmptyAnonymousCart
	}

	for _, item := range localItems {
		existing, err := s.cartRepo.FindQuantity(ctx, userID, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrCartItemNotFound) {
				if err := s.cartRepo.Insert(ctx, userID, item.ProductID, item.Quantity); err != nil {
					s.logger.Error("Cart merge aborted on insert",
						zap.String("user_id", userID.String()),
						zap.String("product_id", item.ProductID.String()),
						zap.Error(err),
					)
					return nil, fmt.Errorf("failed to merge cart line: %w", err)
				}
				continue
			}
			return nil, fmt.Errorf("failed to look up cart line: %w", err)
		}

		if err := s.cartRepo.SetQuantity(ctx, userID, item.ProductID, existing+item.Quantity); err != nil {
			s.logger.Error("Cart merge aborted on update",
				zap.String("user_id", userID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to merge cart line: %w", err)
		}
	}

	// Full pass done: drop the anonymous copy, then hand back the
	// server-authoritative cart.
	if err := anonStore.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear anonymous cart after merge",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	merged, err := s.CartForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Anonymous cart merged",
		zap.String("user_id", userID.String()),
		zap.Int("lines", len(localItems)),
	)

	return merged, nil
}
