// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
)

// OrderStatus represents the order status. Orders are always created
// pending; later statuses are set by order management.
type OrderStatus string

const OrderStatusPending OrderStatus = "pending"

// Order is the header record written once per checkout
type Order struct {
	ID              string          `gorm:"primaryKey;type:uuid" json:"id"`
	CustomerID      string          `gorm:"not null;index;size:64" json:"customer_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"not null;default:'pending';size:20" json:"status"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	Phone           string          `gorm:"size:32" json:"phone"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderLine is an immutable snapshot of one cart line at submission time
type OrderLine struct {
	ID                 uint                `gorm:"primaryKey" json:"-"`
	OrderID            string              `gorm:"not null;index;type:uuid" json:"order_id"`
	ProductID          string              `gorm:"not null;index;size:64" json:"product_id"`
	Quantity           int                 `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	SelectedVariations variation.Selection `gorm:"type:jsonb;serializer:json" json:"selected_variations"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderLine) TableName() string { return "order_items" }

// ShippingForm is the address captured at checkout
type ShippingForm struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	AddressLine string `json:"address_line" validate:"required,max=500"`
	City        string `json:"city" validate:"required,max=100"`
	PostalCode  string `json:"postal_code" validate:"max=20"`
	Country     string `json:"country" validate:"max=100"`
	Phone       string `json:"phone" validate:"required,max=32"`
}

// Flatten renders the address as one line, e.g.
// "Ada Lovelace, 12 Loom St, London N1 7AA, UK". Blank parts are skipped.
func (f ShippingForm) Flatten() string {
	cityLine := strings.TrimSpace(strings.TrimSpace(f.City) + " " + strings.TrimSpace(f.PostalCode))

	var parts []string
	for _, p := range []string{f.FullName, f.AddressLine, cityLine, f.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Identity is the principal placing the order, as resolved by the auth layer
type Identity struct {
	CustomerID    string
	Email         string
	Authenticated bool
}

// IsAuthenticated reports whether the identity can place orders
func (i Identity) IsAuthenticated() bool {
	return i.Authenticated && i.CustomerID != ""
}
