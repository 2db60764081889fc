package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, stock, category_id,
	images, colors, sizes, color, size, is_new, is_bestseller, created_at, updated_at`

// legacyFirst returns the value stored in the legacy single-value
// column: the first element of the canonical slice, or NULL.
func legacyFirst(values []string) sql.NullString {
	if len(values) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: values[0], Valid: true}
}

func marshalList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

// foldLegacy merges a legacy single-value column into the canonical
// slice when the old value is absent from it. Business logic only ever
// sees the multi-value representation.
func foldLegacy(values []string, legacy sql.NullString) []string {
	if !legacy.Valid || legacy.String == "" {
		return values
	}
	for _, v := range values {
		if v == legacy.String {
			return values
		}
	}
	return append(values, legacy.String)
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	images, err := marshalList(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	colors, err := marshalList(product.Colors)
	if err != nil {
		return fmt.Errorf("failed to encode colors: %w", err)
	}
	sizes, err := marshalList(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		INSERT INTO products (id, name, description, price, stock, category_id,
			images, colors, sizes, color, size, is_new, is_bestseller, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
		images,
		colors,
		sizes,
		legacyFirst(product.Colors),
		legacyFirst(product.Sizes),
		product.IsNew,
		product.IsBestseller,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	images, err := marshalList(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	colors, err := marshalList(product.Colors)
	if err != nil {
		return fmt.Errorf("failed to encode colors: %w", err)
	}
	sizes, err := marshalList(product.Sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category_id = $6,
		    images = $7, colors = $8, sizes = $9, color = $10, size = $11,
		    is_new = $12, is_bestseller = $13, updated_at = $14
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
		images,
		colors,
		sizes,
		legacyFirst(product.Colors),
		legacyFirst(product.Sizes),
		product.IsNew,
		product.IsBestseller,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func scanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Product, error) {
	product := &domain.Product{}
	var (
		images, colors, sizes []byte
		legacyColor           sql.NullString
		legacySize            sql.NullString
	)

	err := scanner.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.CategoryID,
		&images,
		&colors,
		&sizes,
		&legacyColor,
		&legacySize,
		&product.IsNew,
		&product.IsBestseller,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := json.Unmarshal(colors, &product.Colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors: %w", err)
	}
	if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
		return nil, fmt.Errorf("failed to decode sizes: %w", err)
	}

	product.Colors = foldLegacy(product.Colors, legacyColor)
	product.Sizes = foldLegacy(product.Sizes, legacySize)

	return product, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with optional category filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"stock":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// Search searches for products by name or description with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, nil, page, pageSize, "created_at", SortOrderDesc)
	}

	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating search results: %w", err)
	}

	return products, total, nil
}
