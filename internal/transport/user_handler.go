package transport

import (
	"encoding/json"
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

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest asks for a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest is the master-admin account edit payload.
type UpdateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func toUserProfile(p *domain.Profile) UserProfile {
	return UserProfile{
		ID:       p.ID.String(),
		Email:    p.Email,
		FullName: p.FullName,
		Phone:    p.Phone,
		Role:     string(p.Role),
	}
}

// UserHandler handles HTTP requests for account operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all account routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, masterAdminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
		})

		// Account management, master admin only
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(masterAdminMiddleware)
			r.Get("/", h.ListUsers)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}

// Register handles account registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.userService.Register(r.Context(), req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		h.logger.Error("Registration failed", zap.Error(err))

		if errors.Is(err, repository.ErrProfileAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			middleware.RespondWithError(w, http.StatusBadRequest, "password is too long")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	h.logger.Info("Account registered", zap.String("user_id", profile.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toUserProfile(profile))
}

// Login handles authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, profile, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserProfile(profile),
	}

	h.logger.Info("User logged in", zap.String("user_id", profile.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Logout handles logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Logout decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newAccessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))

		if errors.Is(err, service.ErrInvalidToken) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if errors.Is(err, service.ErrTokenExpired) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// ForgotPassword requests a password reset email. The response is the
// same whether or not the email has an account.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("Password reset request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "if the email has an account, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.logger.Debug("Password reset failed", zap.Error(err))

		if errors.Is(err, service.ErrInvalidToken) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid reset token")
			return
		}
		if errors.Is(err, service.ErrTokenExpired) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "reset token expired")
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			middleware.RespondWithError(w, http.StatusBadRequest, "password is too long")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(profile))
}

// ListUsers returns every account for the user management screen.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.userService.ListProfiles(r.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	out := make([]UserProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toUserProfile(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// UpdateUser edits an account's name, phone and role.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("Failed to load account", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	profile.FullName = req.FullName
	profile.Phone = req.Phone
	profile.Role = domain.ParseRole(req.Role)

	if err := h.userService.UpdateProfile(r.Context(), profile); err != nil {
		h.logger.Error("Failed to update account", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	h.logger.Info("Account updated", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(profile))
}

// DeleteUser removes an account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.userService.DeleteProfile(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("Failed to delete account", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.logger.Info("Account deleted", zap.String("user_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// userIDFromContext pulls the authenticated user's ID out of the
// request context and parses it.
func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
