// internal/infrastructure/remote/catalog.go
package remote

import (
	"context"
	"net/url"

	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
)

var (
	_ product.Reader   = (*Client)(nil)
	_ variation.Source = (*Client)(nil)
)

// GetProduct reads one active product row by id; inactive products are not found
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("is_active", "eq.true")
	query.Set("select", "*")
	query.Set("limit", "1")

	var rows []product.Product
	if err := c.selectRows(ctx, "products", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, product.ErrNotFound
	}
	return &rows[0], nil
}

// ListVariations reads a product's variation rows ordered by type, then value
func (c *Client) ListVariations(ctx context.Context, productID string) ([]variation.Option, error) {
	query := url.Values{}
	query.Set("product_id", "eq."+productID)
	query.Set("select", "*")
	query.Set("order", "variation_type.asc,variation_value.asc")

	var rows []variation.Option
	if err := c.selectRows(ctx, "product_variations", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
