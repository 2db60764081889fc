package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrColorNotFound = errors.New("color not found")
	ErrSizeNotFound  = errors.New("size not found")
)

// ColorRepository defines the interface for color attribute data access
type ColorRepository interface {
	Create(ctx context.Context, color *domain.Color) error
	Update(ctx context.Context, color *domain.Color) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Color, error)
}

// SizeRepository defines the interface for size attribute data access
type SizeRepository interface {
	Create(ctx context.Context, size *domain.Size) error
	Update(ctx context.Context, size *domain.Size) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Size, error)
}

type colorRepository struct {
	db *sql.DB
}

// NewColorRepository creates a new instance of ColorRepository
func NewColorRepository(db *sql.DB) ColorRepository {
	return &colorRepository{db: db}
}

func (r *colorRepository) Create(ctx context.Context, color *domain.Color) error {
	query := `
		INSERT INTO colors (id, name, hex_code, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, color.ID, color.Name, color.HexCode, color.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create color: %w", err)
	}

	return nil
}

func (r *colorRepository) Update(ctx context.Context, color *domain.Color) error {
	query := `
		UPDATE colors
		SET name = $2, hex_code = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, color.ID, color.Name, color.HexCode)
	if err != nil {
		return fmt.Errorf("failed to update color: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrColorNotFound
	}

	return nil
}

func (r *colorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM colors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete color: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrColorNotFound
	}

	return nil
}

func (r *colorRepository) List(ctx context.Context) ([]*domain.Color, error) {
	query := `
		SELECT id, name, hex_code, created_at
		FROM colors
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	defer rows.Close()

	colors := []*domain.Color{}
	for rows.Next() {
		color := &domain.Color{}
		if err := rows.Scan(&color.ID, &color.Name, &color.HexCode, &color.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, color)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating colors: %w", err)
	}

	return colors, nil
}

type sizeRepository struct {
	db *sql.DB
}

// NewSizeRepository creates a new instance of SizeRepository
func NewSizeRepository(db *sql.DB) SizeRepository {
	return &sizeRepository{db: db}
}

func (r *sizeRepository) Create(ctx context.Context, size *domain.Size) error {
	query := `
		INSERT INTO sizes (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, size.ID, size.Name, size.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create size: %w", err)
	}

	return nil
}

func (r *sizeRepository) Update(ctx context.Context, size *domain.Size) error {
	query := `
		UPDATE sizes
		SET name = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, size.ID, size.Name)
	if err != nil {
		return fmt.Errorf("failed to update size: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSizeNotFound
	}

	return nil
}

func (r *sizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sizes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete size: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSizeNotFound
	}

	return nil
}

func (r *sizeRepository) List(ctx context.Context) ([]*domain.Size, error) {
	query := `
		SELECT id, name, created_at
		FROM sizes
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	defer rows.Close()

	sizes := []*domain.Size{}
	for rows.Next() {
		size := &domain.Size{}
		if err := rows.Scan(&size.ID, &size.Name, &size.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan size: %w", err)
		}
		sizes = append(sizes, size)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sizes: %w", err)
	}

	return sizes, nil
}
