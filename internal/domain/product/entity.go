// internal/domain/product/entity.go
package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product does not exist or is inactive
var ErrNotFound = errors.New("product not found")

// Product is the catalog view of a handmade item
type Product struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"` // Base price before variation adjustments
	ImageURL  string          `gorm:"size:500" json:"image_url"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Product) TableName() string { return "products" }

// Reader reads products from the catalog
type Reader interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}
