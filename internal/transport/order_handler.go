package transport

import (
	"errors"
	"net/http"

	"macrame-store/internal/domain"
	"macrame-store/internal/middleware"
	"macrame-store/internal/repository"
	"macrame-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderResponse is an order header with its lines.
type OrderResponse struct {
	Order *domain.Order      `json:"order"`
	Items []domain.OrderItem `json:"items"`
}

// OrderHandler handles HTTP requests for checkout and order history
type OrderHandler struct {
	orderService service.OrderService
	cartService  service.CartService
	userService  service.UserService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(
	orderService service.OrderService,
	cartService service.CartService,
	userService service.UserService,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cartService:  cartService,
		userService:  userService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes, all behind authentication
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Checkout)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
	})
}

// Checkout records an order from the user's current cart and clears the
// cart on success. There is no payment step; the order lands in the
// initial under-review status for manual handling.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile for checkout", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	c, err := h.cartService.CartForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart for checkout", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, profile.Email, c)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders returns the authenticated user's orders, newest first.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns one order with its items. Users can only see their
// own orders; admins can see any.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, items, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	if order.UserID != userID {
		role, _ := middleware.GetUserRole(r.Context())
		if !role.CanAccessAdmin() {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Order: order, Items: items})
}
