// internal/domain/variation/resolver.go
package variation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	// ErrFetchFailed marks a failed variation fetch. The resolver recovers
	// from it by treating the product as having no variations.
	ErrFetchFailed = errors.New("variation fetch failed")

	// ErrInvalidSelection is returned when an option cannot be selected
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrUnknownGroup is returned when selecting into a group the product does not offer
	ErrUnknownGroup = errors.New("unknown variation group")
)

// Snapshot is what subscribers receive after every change
type Snapshot struct {
	Selection       Selection
	Valid           bool
	PriceAdjustment decimal.Decimal
}

// AdjustmentLine is one non-zero entry of the price adjustment summary
type AdjustmentLine struct {
	Type       Type            `json:"variation_type"`
	Value      string          `json:"variation_value"`
	Adjustment decimal.Decimal `json:"price_adjustment"`
	Label      string          `json:"label"`
}

// Resolver tracks the variation groups of one product and the caller's
// current choice in each group. It is not safe for concurrent use.
type Resolver struct {
	source      Source
	logger      logrus.FieldLogger
	productID   string
	groups      []Group
	selection   Selection
	degraded    bool
	subscribers []func(Snapshot)
}

// NewResolver creates a resolver reading options from source
func NewResolver(source Source, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		source:    source,
		logger:    logger,
		selection: Selection{},
	}
}

// LoadGroups fetches the option groups of productID and resets the selection.
// A fetch failure is logged and leaves the product with zero groups.
func (r *Resolver) LoadGroups(ctx context.Context, productID string) []Group {
	r.productID = productID
	r.selection = Selection{}
	r.degraded = false

	options, err := r.source.ListVariations(ctx, productID)
	if err != nil {
		r.logger.WithError(fmt.Errorf("%w: %v", ErrFetchFailed, err)).
			WithField("product_id", productID).
			Warn("Variation fetch failed, treating product as variation-free")
		r.groups = nil
		r.degraded = true
		r.notify()
		return nil
	}

	r.groups = GroupOptions(options)
	r.notify()
	return r.Groups()
}

// Groups returns a copy of the loaded groups
func (r *Resolver) Groups() []Group {
	out := make([]Group, len(r.groups))
	for i, g := range r.groups {
		out[i] = Group{Type: g.Type, Options: append([]Option(nil), g.Options...)}
	}
	return out
}

// ProductID returns the product whose groups are loaded
func (r *Resolver) ProductID() string {
	return r.productID
}

// Degraded reports whether the last load fell back to zero groups
func (r *Resolver) Degraded() bool {
	return r.degraded
}

// Select records or replaces the choice for groupType. The loaded copy of
// the option is authoritative, so stale stock counts from callers are ignored.
func (r *Resolver) Select(groupType Type, option Option) error {
	group, ok := r.group(groupType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, groupType)
	}

	loaded, ok := group.Option(option.ID)
	if !ok {
		return fmt.Errorf("%w: option %s is not offered for %s", ErrInvalidSelection, option.ID, groupType)
	}
	if !loaded.Selectable() {
		return fmt.Errorf("%w: %s %q is out of stock", ErrInvalidSelection, groupType, loaded.Value)
	}

	r.selection[groupType] = loaded
	r.notify()
	return nil
}

// SelectByID selects the option with the given id in whichever group offers it
func (r *Resolver) SelectByID(optionID string) error {
	for _, g := range r.groups {
		if opt, ok := g.Option(optionID); ok {
			return r.Select(g.Type, opt)
		}
	}
	return fmt.Errorf("%w: option %s is not offered for product %s", ErrInvalidSelection, optionID, r.productID)
}

// Deselect clears the choice for groupType
func (r *Resolver) Deselect(groupType Type) {
	if _, ok := r.selection[groupType]; !ok {
		return
	}
	delete(r.selection, groupType)
	r.notify()
}

// Selection returns a copy of the current selection
func (r *Resolver) Selection() Selection {
	return r.selection.Clone()
}

// IsValid reports whether every loaded group has a chosen option.
// A product without groups is always valid.
func (r *Resolver) IsValid() bool {
	return len(r.Missing()) == 0
}

// Missing lists the loaded groups that still lack a choice
func (r *Resolver) Missing() []Type {
	var missing []Type
	for _, g := range r.groups {
		if _, ok := r.selection[g.Type]; !ok {
			missing = append(missing, g.Type)
		}
	}
	return missing
}

// PriceAdjustment sums the adjustments of the selected options
func (r *Resolver) PriceAdjustment() decimal.Decimal {
	return r.selection.PriceAdjustment()
}

// Summary lists the selected options with a non-zero adjustment, in group order
func (r *Resolver) Summary() []AdjustmentLine {
	var lines []AdjustmentLine
	for _, g := range r.groups {
		opt, ok := r.selection[g.Type]
		if !ok || opt.PriceAdjustment.IsZero() {
			continue
		}
		lines = append(lines, AdjustmentLine{
			Type:       g.Type,
			Value:      opt.Value,
			Adjustment: opt.PriceAdjustment,
			Label:      FormatAdjustment(opt.PriceAdjustment),
		})
	}
	return lines
}

// Subscribe registers fn to receive a snapshot after every change
func (r *Resolver) Subscribe(fn func(Snapshot)) {
	r.subscribers = append(r.subscribers, fn)
}

// Snapshot returns the current selection state
func (r *Resolver) Snapshot() Snapshot {
	return Snapshot{
		Selection:       r.Selection(),
		Valid:           r.IsValid(),
		PriceAdjustment: r.PriceAdjustment(),
	}
}

func (r *Resolver) notify() {
	if len(r.subscribers) == 0 {
		return
	}
	snap := r.Snapshot()
	for _, fn := range r.subscribers {
		fn(snap)
	}
}

func (r *Resolver) group(t Type) (Group, bool) {
	for _, g := range r.groups {
		if g.Type == t {
			return g, true
		}
	}
	return Group{}, false
}

// FormatAdjustment renders an adjustment with an explicit sign, e.g. "+5.00"
func FormatAdjustment(adj decimal.Decimal) string {
	if adj.IsNegative() {
		return "-" + adj.Abs().StringFixed(2)
	}
	return "+" + adj.StringFixed(2)
}
