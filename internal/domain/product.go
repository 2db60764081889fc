package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductImages caps how many images a product may carry. The first
// image in the slice is the cover.
const MaxProductImages = 4

// Product represents an item in the storefront catalog.
//
// Colors and Sizes are the canonical multi-value representation. The
// storage layer folds the legacy single-value color/size columns into
// these slices when reading old rows.
type Product struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Price        float64    `json:"price" db:"price"`
	Stock        int        `json:"stock" db:"stock"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	Images       []string   `json:"images" db:"images"`
	Colors       []string   `json:"colors" db:"colors"`
	Sizes        []string   `json:"sizes" db:"sizes"`
	IsNew        bool       `json:"is_new" db:"is_new"`
	IsBestseller bool       `json:"is_bestseller" db:"is_bestseller"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CoverImage returns the first image URL, or empty when the product has
// no images.
func (p *Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category groups products. Deleting a category does not cascade to the
// products that reference it.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Color is an admin-managed product attribute with a display hex code.
type Color struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	HexCode   string    `json:"hex_code" db:"hex_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Size is an admin-managed product attribute.
type Size struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
