// internal/domain/pricing/pricing.go
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/handmade-storefront/internal/config"
)

// Policy holds the store pricing constants
type Policy struct {
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	FlatShippingFee       decimal.Decimal `json:"flat_shipping_fee"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
}

// Totals represents a pricing breakdown
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// PolicyFromConfig builds the pricing policy from configuration
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
		TaxRate:               cfg.Pricing.TaxRate,
	}
}

// ComputeTotals derives shipping, tax and grand total from a subtotal.
// Free shipping applies only when the subtotal is strictly above the threshold.
// An empty cart still pays the flat fee; callers must stop before checkout.
func ComputeTotals(subtotal decimal.Decimal, policy Policy) Totals {
	shipping := policy.FlatShippingFee
	if subtotal.GreaterThan(policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(policy.TaxRate).Round(2)

	return Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}
}

// QualifiesForFreeShipping reports whether subtotal earns free shipping
func (p Policy) QualifiesForFreeShipping(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThan(p.FreeShippingThreshold)
}

// AmountToFreeShipping returns how much more must be spent before
// shipping becomes free; zero once the cart already qualifies.
func (p Policy) AmountToFreeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if p.QualifiesForFreeShipping(subtotal) {
		return decimal.Zero
	}
	return p.FreeShippingThreshold.Sub(subtotal)
}
