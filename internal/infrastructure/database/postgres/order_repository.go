// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"

	"github.com/pkg/errors"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"gorm.io/gorm"
)

const orderLineBatchSize = 100

// OrderRepository writes orders. Besides the two independent inserts it
// offers CreateOrderWithLines, which the assembler prefers when present.
type OrderRepository struct {
	db *gorm.DB
}

var (
	_ order.Store        = (*OrderRepository)(nil)
	_ order.AtomicWriter = (*OrderRepository)(nil)
)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts an order header
func (r *OrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	return createOrder(r.db.WithContext(ctx), o)
}

// CreateOrderLines inserts order lines in batches
func (r *OrderRepository) CreateOrderLines(ctx context.Context, lines []order.OrderLine) error {
	return createOrderLines(r.db.WithContext(ctx), lines)
}

// CreateOrderWithLines inserts the header and its lines in one transaction
func (r *OrderRepository) CreateOrderWithLines(ctx context.Context, o *order.Order, lines []order.OrderLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createOrder(tx, o); err != nil {
			return err
		}
		return createOrderLines(tx, lines)
	})
}

func createOrder(db *gorm.DB, o *order.Order) error {
	if err := db.Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(err, "order %s already exists", o.ID)
		}
		return errors.Wrap(err, "failed to create order")
	}
	return nil
}

func createOrderLines(db *gorm.DB, lines []order.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	if err := db.CreateInBatches(&lines, orderLineBatchSize).Error; err != nil {
		return errors.Wrap(err, "failed to create order items")
	}
	return nil
}
