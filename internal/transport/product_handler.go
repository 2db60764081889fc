package transport

import (
	"errors"
	"net/http"
	"strconv"

	"macrame-store/internal/domain"
	"macrame-store/internal/middleware"
	"macrame-store/internal/repository"
	"macrame-store/internal/service"
	"macrame-store/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadSize caps multipart uploads for product images.
const maxUploadSize = 10 << 20 // 10 MB

// ProductRequest is the admin create/update payload.
type ProductRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"gte=0"`
	Stock        int      `json:"stock" validate:"gte=0"`
	CategoryID   *string  `json:"category_id"`
	Images       []string `json:"images" validate:"max=4"`
	Colors       []string `json:"colors"`
	Sizes        []string `json:"sizes"`
	IsNew        bool     `json:"is_new"`
	IsBestseller bool     `json:"is_bestseller"`
}

// ProductListResponse wraps a product page with its total count.
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// UploadResponse returns the public URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalogService service.CatalogService
	uploader       storage.Uploader
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, uploader storage.Uploader, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		uploader:       uploader,
		logger:         logger,
	}
}

// RegisterRoutes registers public catalog routes and the admin CRUD
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.ListProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{id}", h.GetProduct)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/images", h.UploadImage)
		})
	})
}

// ListProducts returns a product page, optionally filtered by category.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		categoryID = &id
	}

	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := repository.SortOrderDesc
	if r.URL.Query().Get("sort_order") == "asc" {
		sortOrder = repository.SortOrderAsc
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// SearchProducts searches name and description.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	query := r.URL.Query().Get("q")

	products, total, err := h.catalogService.SearchProducts(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct returns one product by ID.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct inserts a product.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.CreateProduct(r.Context(), product); err != nil {
		h.respondCatalogError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct updates an existing product.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	if err := h.catalogService.UpdateProduct(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondCatalogError(w, err, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// UploadImage stores one image file and returns its public URL. The
// handler only stores the file; attaching the URL to a product is a
// separate create/update call.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("Image upload failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	h.logger.Info("Image uploaded", zap.String("url", url))
	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{URL: url})
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	product := &domain.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		Images:       req.Images,
		Colors:       req.Colors,
		Sizes:        req.Sizes,
		IsNew:        req.IsNew,
		IsBestseller: req.IsBestseller,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
			return nil, false
		}
		product.CategoryID = &categoryID
	}

	return product, true
}

func (h *ProductHandler) respondCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrTooManyImages):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// parsePagination reads page and page_size query parameters with
// defaults applied by the service layer for out-of-range values.
func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
