// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
	"gorm.io/gorm"
)

// seedNamespace derives stable ids for seeded rows, so reseeding is idempotent
var seedNamespace = uuid.MustParse("6f1c2b8e-4d3a-4b7e-9a51-0c2f7e8d9b10")

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger logrus.FieldLogger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for the catalog and order tables
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&product.Product{},
		&variation.Option{},
		&order.Order{},
		&order.OrderLine{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return errors.Wrapf(err, "failed to migrate model %T", model)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the indexes the read paths rely on. Failures are
// logged and counted, not returned.
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variations_product_order ON product_variations(product_id, variation_type, variation_value)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders(customer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes ensured")
	return nil
}

// SeedInitialData inserts a small handmade catalog for development
func (m *Migration) SeedInitialData() error {
	m.logger.Info("Seeding development catalog")

	for _, item := range seedCatalog() {
		var existing product.Product
		err := m.db.Where("id = ?", item.product.ID).First(&existing).Error
		if err == nil {
			m.logger.WithField("product", item.product.Name).Debug("Product already exists")
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "failed to look up seed product")
		}

		err = m.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&item.product).Error; err != nil {
				return err
			}
			if len(item.options) == 0 {
				return nil
			}
			return tx.Create(&item.options).Error
		})
		if err != nil {
			return errors.Wrapf(err, "failed to seed product %s", item.product.Name)
		}
		m.logger.WithField("product", item.product.Name).Info("Seeded product")
	}

	return nil
}

type seedItem struct {
	product product.Product
	options []variation.Option
}

func seedID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

func seedOption(productSlug string, t variation.Type, value string, adjustment string, stock int) variation.Option {
	return variation.Option{
		ID:              seedID(productSlug + "/" + string(t) + "/" + value),
		ProductID:       seedID(productSlug),
		Type:            t,
		Value:           value,
		PriceAdjustment: decimal.RequireFromString(adjustment),
		StockQuantity:   stock,
	}
}

func seedCatalog() []seedItem {
	return []seedItem{
		{
			product: product.Product{
				ID:       seedID("stoneware-mug"),
				Name:     "Stoneware Mug",
				Price:    decimal.RequireFromString("28.00"),
				ImageURL: "/images/stoneware-mug.jpg",
				IsActive: true,
			},
			options: []variation.Option{
				seedOption("stoneware-mug", variation.TypeColor, "Celadon", "0", 12),
				seedOption("stoneware-mug", variation.TypeColor, "Speckled White", "0", 8),
				seedOption("stoneware-mug", variation.TypeColor, "Tenmoku", "4.00", 0),
				seedOption("stoneware-mug", variation.TypeSize, "Small", "-3.00", 6),
				seedOption("stoneware-mug", variation.TypeSize, "Large", "5.00", 4),
			},
		},
		{
			product: product.Product{
				ID:       seedID("woven-basket"),
				Name:     "Woven Seagrass Basket",
				Price:    decimal.RequireFromString("64.00"),
				ImageURL: "/images/woven-basket.jpg",
				IsActive: true,
			},
			options: []variation.Option{
				seedOption("woven-basket", variation.TypeShape, "Round", "0", 5),
				seedOption("woven-basket", variation.TypeShape, "Oval", "8.00", 3),
				seedOption("woven-basket", variation.TypeSize, "Medium", "0", 5),
				seedOption("woven-basket", variation.TypeSize, "Large", "16.00", 2),
			},
		},
		{
			product: product.Product{
				ID:       seedID("beeswax-candle"),
				Name:     "Beeswax Pillar Candle",
				Price:    decimal.RequireFromString("18.50"),
				ImageURL: "/images/beeswax-candle.jpg",
				IsActive: true,
			},
		},
	}
}
