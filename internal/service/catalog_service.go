package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"macrame-store/internal/domain"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidPrice  = errors.New("price must be a non-negative number")
	ErrTooManyImages = fmt.Errorf("a product can have at most %d images", domain.MaxProductImages)
)

// CatalogService carries the admin CRUD for products, categories,
// colors and sizes. Validation is required-field presence only; there
// are no uniqueness or referential-integrity checks beyond what the
// database enforces, so deleting a category neither cascades nor
// blocks on products that still reference it.
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)

	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	CreateColor(ctx context.Context, name, hexCode string) (*domain.Color, error)
	UpdateColor(ctx context.Context, id uuid.UUID, name, hexCode string) error
	DeleteColor(ctx context.Context, id uuid.UUID) error
	ListColors(ctx context.Context) ([]*domain.Color, error)

	CreateSize(ctx context.Context, name string) (*domain.Size, error)
	UpdateSize(ctx context.Context, id uuid.UUID, name string) error
	DeleteSize(ctx context.Context, id uuid.UUID) error
	ListSizes(ctx context.Context) ([]*domain.Size, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	colorRepo    repository.ColorRepository
	sizeRepo     repository.SizeRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	colorRepo repository.ColorRepository,
	sizeRepo repository.SizeRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		colorRepo:    colorRepo,
		sizeRepo:     sizeRepo,
	}
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return ErrNameRequired
	}
	if product.Price < 0 {
		return ErrInvalidPrice
	}
	if len(product.Images) > domain.MaxProductImages {
		return ErrTooManyImages
	}
	return nil
}

// CreateProduct validates and inserts a product.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	return s.productRepo.Create(ctx, product)
}

// UpdateProduct validates and updates a product.
func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// CreateCategory inserts a category after checking the name is present.
func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.categoryRepo.Update(ctx, &domain.Category{ID: id, Name: name, Description: description})
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// CreateColor inserts a color attribute with its hex code.
func (s *catalogService) CreateColor(ctx context.Context, name, hexCode string) (*domain.Color, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	color := &domain.Color{
		ID:        uuid.New(),
		Name:      name,
		HexCode:   hexCode,
		CreatedAt: time.Now(),
	}

	if err := s.colorRepo.Create(ctx, color); err != nil {
		return nil, err
	}
	return color, nil
}

func (s *catalogService) UpdateColor(ctx context.Context, id uuid.UUID, name, hexCode string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.colorRepo.Update(ctx, &domain.Color{ID: id, Name: name, HexCode: hexCode})
}

func (s *catalogService) DeleteColor(ctx context.Context, id uuid.UUID) error {
	return s.colorRepo.Delete(ctx, id)
}

func (s *catalogService) ListColors(ctx context.Context) ([]*domain.Color, error) {
	return s.colorRepo.List(ctx)
}

// CreateSize inserts a size attribute.
func (s *catalogService) CreateSize(ctx context.Context, name string) (*domain.Size, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	size := &domain.Size{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.sizeRepo.Create(ctx, size); err != nil {
		return nil, err
	}
	return size, nil
}

func (s *catalogService) UpdateSize(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.sizeRepo.Update(ctx, &domain.Size{ID: id, Name: name})
}

func (s *catalogService) DeleteSize(ctx context.Context, id uuid.UUID) error {
	return s.sizeRepo.Delete(ctx, id)
}

func (s *catalogService) ListSizes(ctx context.Context) ([]*domain.Size, error) {
	return s.sizeRepo.List(ctx)
}
