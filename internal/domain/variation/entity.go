// internal/domain/variation/entity.go
package variation

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Type is a variation axis offered for a product
type Type string

const (
	TypeColor Type = "color"
	TypeSize  Type = "size"
	TypeShape Type = "shape"
)

// Valid reports whether t is one of the supported variation types
func (t Type) Valid() bool {
	switch t {
	case TypeColor, TypeSize, TypeShape:
		return true
	}
	return false
}

// Option is one selectable value inside a variation group
type Option struct {
	ID              string          `gorm:"primaryKey;type:uuid" json:"id"`
	ProductID       string          `gorm:"not null;index;type:uuid" json:"product_id,omitempty"`
	Type            Type            `gorm:"column:variation_type;not null;size:20" json:"variation_type"`
	Value           string          `gorm:"column:variation_value;not null;size:100" json:"variation_value"`
	PriceAdjustment decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price_adjustment"`
	StockQuantity   int             `gorm:"default:0" json:"stock_quantity"`
}

// TableName overrides the table name
func (Option) TableName() string { return "product_variations" }

// Selectable reports whether the option may become part of a selection
func (o Option) Selectable() bool {
	return o.StockQuantity > 0
}

// Group is the set of options sharing one variation type
type Group struct {
	Type    Type     `json:"variation_type"`
	Options []Option `json:"options"`
}

// Option looks up an option of the group by id
func (g Group) Option(id string) (Option, bool) {
	for _, opt := range g.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Source lists the variation options of a product
type Source interface {
	ListVariations(ctx context.Context, productID string) ([]Option, error)
}

// GroupOptions orders options by (type, value) and groups them by type.
// Options of unsupported types are skipped.
func GroupOptions(options []Option) []Group {
	sorted := make([]Option, 0, len(options))
	for _, opt := range options {
		if opt.Type.Valid() {
			sorted = append(sorted, opt)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Value < sorted[j].Value
	})

	var groups []Group
	for _, opt := range sorted {
		if n := len(groups); n > 0 && groups[n-1].Type == opt.Type {
			groups[n-1].Options = append(groups[n-1].Options, opt)
			continue
		}
		groups = append(groups, Group{Type: opt.Type, Options: []Option{opt}})
	}
	return groups
}

// Selection maps each variation type to its chosen option
type Selection map[Type]Option

// Clone returns an independent copy of the selection
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for t, opt := range s {
		out[t] = opt
	}
	return out
}

// Equal reports whether both selections choose the same options
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for t, opt := range s {
		o, ok := other[t]
		if !ok || o.ID != opt.ID {
			return false
		}
	}
	return true
}

// Types returns the selected types in a stable order
func (s Selection) Types() []Type {
	types := make([]Type, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// PriceAdjustment sums the adjustments of all chosen options
func (s Selection) PriceAdjustment() decimal.Decimal {
	total := decimal.Zero
	for _, opt := range s {
		total = total.Add(opt.PriceAdjustment)
	}
	return total
}
