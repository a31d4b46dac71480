// internal/infrastructure/remote/orders.go
package remote

import (
	"context"

	"github.com/your-org/handmade-storefront/internal/domain/order"
)

// The record store has no multi-row transaction, so Client implements
// order.Store only and the assembler uses the two-step write.
var _ order.Store = (*Client)(nil)

// CreateOrder inserts the order header row
func (c *Client) CreateOrder(ctx context.Context, o *order.Order) error {
	return c.insertRows(ctx, "orders", []*order.Order{o})
}

// CreateOrderLines inserts all order lines in one request
func (c *Client) CreateOrderLines(ctx context.Context, lines []order.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return c.insertRows(ctx, "order_items", lines)
}
