package transport

import (
	"errors"
	"net/http"

	"macrame-store/internal/cart"
	"macrame-store/internal/domain"
	"macrame-store/internal/middleware"
	"macrame-store/internal/repository"
	"macrame-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartTokenHeader carries the anonymous cart token. The client stores
// the token and sends it on every cart request until login; a response
// to a tokenless anonymous request sets the header with a fresh one.
const CartTokenHeader = "X-Cart-Token"

// AddItemRequest adds quantity units of a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest applies a delta to a line's quantity.
type UpdateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// MergeCartRequest folds an anonymous cart into the user's cart after
// login.
type MergeCartRequest struct {
	CartToken string `json:"cart_token" validate:"required"`
}

// CartResponse is the cart view returned by every cart endpoint.
type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items:    c.Lines(),
		Subtotal: c.Subtotal(),
	}
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService    service.CartService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, catalogService service.CatalogService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers cart routes. The main tree takes optional
// auth so anonymous sessions work with a cart token; merge requires a
// logged-in user.
func (h *CartHandler) RegisterRoutes(r chi.Router, optionalAuthMiddleware, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMiddleware)
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{productID}", h.UpdateQuantity)
			r.Delete("/items/{productID}", h.RemoveItem)
			r.Delete("/", h.ClearCart)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/merge", h.MergeCart)
		})
	})
}

// loadCart resolves the session's cart: the user's server-side cart
// when authenticated, otherwise the token cart. A tokenless anonymous
// request gets a fresh token, echoed back via the response header so
// the client can persist it.
func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	if userID, ok := userIDFromContext(r); ok {
		c, err := h.cartService.CartForUser(r.Context(), userID)
		if err != nil {
			h.logger.Error("Failed to load user cart", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
			return nil, false
		}
		return c, true
	}

	token := r.Header.Get(CartTokenHeader)
	if token == "" {
		token = uuid.New().String()
	}
	w.Header().Set(CartTokenHeader, token)

	c, err := h.cartService.CartForToken(r.Context(), token)
	if err != nil {
		h.logger.Error("Failed to load anonymous cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return nil, false
	}
	return c, true
}

// GetCart returns the session's cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// AddItem adds a product to the cart, growing an existing line for the
// same product instead of duplicating it.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	if err := c.AddItem(r.Context(), product, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		h.logger.Error("Failed to add cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// UpdateQuantity applies a delta to a line, clamped to a minimum of 1.
// Unknown products are a no-op and still return the cart.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	if err := c.UpdateQuantity(r.Context(), productID, req.Delta); err != nil {
		h.logger.Error("Failed to update cart quantity", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// RemoveItem deletes a line. Removing a product that is not in the cart
// succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	if err := c.RemoveItem(r.Context(), productID); err != nil {
		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// ClearCart empties the cart. Clearing an empty cart succeeds.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	if err := c.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// MergeCart folds the anonymous token cart into the authenticated
// user's cart. An empty anonymous cart is a no-op that returns the
// user's cart unchanged.
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req MergeCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := h.cartService.MergeAnonymous(r.Context(), req.CartToken, userID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyAnonymousCart) {
			c, loadErr := h.cartService.CartForUser(r.Context(), userID)
			if loadErr != nil {
				h.logger.Error("Failed to load user cart", zap.Error(loadErr))
				middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
				return
			}
			middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
			return
		}

		h.logger.Error("Cart merge failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to merge cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(merged))
}
