// internal/infrastructure/database/postgres/catalog_repository.go
package postgres

import (
	"context"

	"github.com/pkg/errors"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
	"gorm.io/gorm"
)

// CatalogRepository reads products and their variation options
type CatalogRepository struct {
	db *gorm.DB
}

var (
	_ product.Reader   = (*CatalogRepository)(nil)
	_ variation.Source = (*CatalogRepository)(nil)
)

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetProduct returns an active product by id
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product by ID")
	}
	return &p, nil
}

// ListVariations returns a product's options ordered by type, then value
func (r *CatalogRepository) ListVariations(ctx context.Context, productID string) ([]variation.Option, error) {
	var options []variation.Option
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("variation_type ASC").
		Order("variation_value ASC").
		Find(&options).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list product variations")
	}
	return options, nil
}
