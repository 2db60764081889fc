package transport

import (
	"net/http"

	"macrame-store/internal/middleware"
	"macrame-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// LeadRequest is a newsletter signup.
type LeadRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ContactHandler handles the contact form and newsletter signups
type ContactHandler struct {
	contactService service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public submission routes and the admin
// inbox
func (h *ContactHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/contact", func(r chi.Router) {
		r.Post("/", h.SubmitMessage)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.ListMessages)
		})
	})

	r.Post("/api/leads", h.SubscribeLead)
}

// SubmitMessage stores a contact message. Forwarding by email and form
// relay happens behind the service and never fails the request.
func (h *ContactHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.contactService.SubmitMessage(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		h.logger.Error("Failed to store contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	h.logger.Info("Contact message received", zap.String("message_id", msg.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, msg)
}

// SubscribeLead records a newsletter signup.
func (h *ContactHandler) SubscribeLead(w http.ResponseWriter, r *http.Request) {
	var req LeadRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead, err := h.contactService.SubscribeLead(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("Failed to store lead", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, lead)
}

// ListMessages returns the stored contact messages for the admin panel.
func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.contactService.ListMessages(r.Context())
	if err != nil {
		h.logger.Error("Failed to list contact messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, messages)
}
