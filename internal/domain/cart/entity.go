// internal/domain/cart/entity.go
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
)

// Line is one product plus its chosen variations in the cart
type Line struct {
	ProductID          string              `json:"id"`
	Name               string              `json:"name"`
	UnitPrice          decimal.Decimal     `json:"unit_price"` // Base price plus variation adjustments
	ImageURL           string              `json:"image_url"`
	Quantity           int                 `json:"quantity"`
	SelectedVariations variation.Selection `json:"selected_variations"`
}

// LineID identifies a line by product and chosen options. Two lines with
// the same LineID are the same line and must be merged.
func (l Line) LineID() string {
	return LineID(l.ProductID, l.SelectedVariations)
}

// Total returns unit price times quantity
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineID builds the identity of a product/selection pair,
// e.g. "p1" or "p1|color=c3|size=s1".
func LineID(productID string, selection variation.Selection) string {
	var b strings.Builder
	b.WriteString(productID)
	for _, t := range selection.Types() {
		b.WriteString("|")
		b.WriteString(string(t))
		b.WriteString("=")
		b.WriteString(selection[t].ID)
	}
	return b.String()
}

// ProductSnapshot is what a caller hands to Add: a fully priced product
// with the resolver's selection already applied.
type ProductSnapshot struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	ImageURL  string              `json:"image_url"`
	Selection variation.Selection `json:"selection"`
}

// Totals represents derived cart totals
type Totals struct {
	LineCount int             `json:"line_count"` // Number of distinct lines
	ItemCount int             `json:"item_count"` // Sum of all quantities
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ComputeTotals derives totals from lines
func ComputeTotals(lines []Line) Totals {
	totals := Totals{LineCount: len(lines), Subtotal: decimal.Zero}
	for _, l := range lines {
		totals.ItemCount += l.Quantity
		totals.Subtotal = totals.Subtotal.Add(l.Total())
	}
	return totals
}
