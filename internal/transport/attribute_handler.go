package transport

import (
	"errors"
	"net/http"

	"macrame-store/internal/middleware"
	"macrame-store/internal/repository"
	"macrame-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest is the admin category payload.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// ColorRequest is the admin color payload.
type ColorRequest struct {
	Name    string `json:"name" validate:"required"`
	HexCode string `json:"hex_code" validate:"omitempty,hexcolor"`
}

// SizeRequest is the admin size payload.
type SizeRequest struct {
	Name string `json:"name" validate:"required"`
}

// AttributeHandler handles categories and the color/size attribute lists
type AttributeHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewAttributeHandler creates a new AttributeHandler
func NewAttributeHandler(catalogService service.CatalogService, logger *zap.Logger) *AttributeHandler {
	return &AttributeHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers public listing routes and the admin CRUD
func (h *AttributeHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/api/colors", func(r chi.Router) {
		r.Get("/", h.ListColors)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateColor)
			r.Put("/{id}", h.UpdateColor)
			r.Delete("/{id}", h.DeleteColor)
		})
	})

	r.Route("/api/sizes", func(r chi.Router) {
		r.Get("/", h.ListSizes)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateSize)
			r.Put("/{id}", h.UpdateSize)
			r.Delete("/{id}", h.DeleteSize)
		})
	})
}

// ListCategories returns all categories.
func (h *AttributeHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory inserts a category.
func (h *AttributeHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "a category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory edits a category.
func (h *AttributeHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.catalogService.UpdateCategory(r.Context(), id, req.Name, req.Description); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to update category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
}

// DeleteCategory removes a category. Products referencing it keep their
// dangling category_id.
func (h *AttributeHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListColors returns all color attributes.
func (h *AttributeHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.catalogService.ListColors(r.Context())
	if err != nil {
		h.logger.Error("Failed to list colors", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list colors")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, colors)
}

// CreateColor inserts a color attribute.
func (h *AttributeHandler) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if !h.decode(w, r, &req) {
		return
	}

	color, err := h.catalogService.CreateColor(r.Context(), req.Name, req.HexCode)
	if err != nil {
		h.logger.Error("Failed to create color", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create color")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, color)
}

// UpdateColor edits a color attribute.
func (h *AttributeHandler) UpdateColor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid color ID")
		return
	}

	var req ColorRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.catalogService.UpdateColor(r.Context(), id, req.Name, req.HexCode); err != nil {
		if errors.Is(err, repository.ErrColorNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "color not found")
			return
		}
		h.logger.Error("Failed to update color", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update color")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "color updated"})
}

// DeleteColor removes a color attribute.
func (h *AttributeHandler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid color ID")
		return
	}

	if err := h.catalogService.DeleteColor(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrColorNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "color not found")
			return
		}
		h.logger.Error("Failed to delete color", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete color")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "color deleted"})
}

// ListSizes returns all size attributes.
func (h *AttributeHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.catalogService.ListSizes(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sizes", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sizes")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sizes)
}

// CreateSize inserts a size attribute.
func (h *AttributeHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	size, err := h.catalogService.CreateSize(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("Failed to create size", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create size")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, size)
}

// UpdateSize edits a size attribute.
func (h *AttributeHandler) UpdateSize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid size ID")
		return
	}

	var req SizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.catalogService.UpdateSize(r.Context(), id, req.Name); err != nil {
		if errors.Is(err, repository.ErrSizeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "size not found")
			return
		}
		h.logger.Error("Failed to update size", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update size")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "size updated"})
}

// DeleteSize removes a size attribute.
func (h *AttributeHandler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid size ID")
		return
	}

	if err := h.catalogService.DeleteSize(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSizeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "size not found")
			return
		}
		h.logger.Error("Failed to delete size", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete size")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "size deleted"})
}

func (h *AttributeHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
