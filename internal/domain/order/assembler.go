// internal/domain/order/assembler.go
package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
	"github.com/your-org/handmade-storefront/internal/domain/pricing"
	"golang.org/x/sync/singleflight"
)

// Store writes orders to the remote record store. The two writes are
// independent inserts with no transaction between them.
type Store interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateOrderLines(ctx context.Context, lines []OrderLine) error
}

// AtomicWriter is implemented by stores that can write a header and its
// lines in one transaction.
type AtomicWriter interface {
	CreateOrderWithLines(ctx context.Context, order *Order, lines []OrderLine) error
}

// Cart is the view of a cart the assembler consumes
type Cart interface {
	Key() string
	Lines() []cart.Line
	RemoveOrdered(ctx context.Context, ordered []cart.Line)
}

// Assembler turns a cart and a shipping form into an order header plus one
// order line per cart line.
type Assembler struct {
	store    Store
	policy   pricing.Policy
	logger   logrus.FieldLogger
	validate *validator.Validate
	inflight singleflight.Group
	now      func() time.Time
	newID    func() string
}

// NewAssembler creates an order assembler
func NewAssembler(store Store, policy pricing.Policy, logger logrus.FieldLogger) *Assembler {
	return &Assembler{
		store:    store,
		policy:   policy,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Submit places an order for the cart's lines and clears the cart once
// every write is confirmed. Preconditions are checked before any network
// call. Concurrent submissions of the same cart contents by the same
// customer share one in-flight write. Once the header write starts,
// cancelling ctx no longer stops it.
//
// On KindOrderLinesFailed the returned id is the orphaned header's id.
func (a *Assembler) Submit(ctx context.Context, c Cart, form ShippingForm, identity Identity) (string, error) {
	if !identity.IsAuthenticated() {
		return "", &Error{Kind: KindNotAuthenticated}
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return "", &Error{Kind: KindEmptyCart}
	}

	if err := a.validate.Struct(form); err != nil {
		return "", &Error{Kind: KindInvalidShippingForm, Err: err}
	}

	v, err, shared := a.inflight.Do(submissionKey(identity.CustomerID, c.Key(), lines), func() (interface{}, error) {
		return a.submit(context.WithoutCancel(ctx), c, lines, form, identity)
	})
	if shared {
		a.logger.WithField("customer_id", identity.CustomerID).Warn("Duplicate order submission joined in-flight write")
	}

	orderID, _ := v.(string)
	return orderID, err
}

func (a *Assembler) submit(ctx context.Context, c Cart, lines []cart.Line, form ShippingForm, identity Identity) (string, error) {
	totals := pricing.ComputeTotals(cart.ComputeTotals(lines).Subtotal, a.policy)

	header := &Order{
		ID:              a.newID(),
		CustomerID:      identity.CustomerID,
		TotalAmount:     totals.GrandTotal,
		Status:          OrderStatusPending,
		ShippingAddress: form.Flatten(),
		Phone:           form.Phone,
		Notes:           "",
		CreatedAt:       a.now(),
	}
	orderLines := BuildLines(header.ID, lines)

	log := a.logger.WithFields(logrus.Fields{
		"order_id":    header.ID,
		"customer_id": identity.CustomerID,
		"line_count":  len(orderLines),
		"total":       header.TotalAmount.StringFixed(2),
	})

	if atomic, ok := a.store.(AtomicWriter); ok {
		if err := atomic.CreateOrderWithLines(ctx, header, orderLines); err != nil {
			log.WithError(err).Error("Failed to create order")
			return "", &Error{Kind: KindOrderHeaderFailed, Err: err}
		}
	} else {
		if err := a.store.CreateOrder(ctx, header); err != nil {
			log.WithError(err).Error("Failed to create order header")
			return "", &Error{Kind: KindOrderHeaderFailed, Err: err}
		}

		if err := a.store.CreateOrderLines(ctx, orderLines); err != nil {
			log.WithError(err).Error("Failed to create order lines, order header is orphaned")
			return header.ID, &Error{Kind: KindOrderLinesFailed, OrderID: header.ID, Err: err}
		}
	}

	// Lines added while the order was written stay in the cart
	c.RemoveOrdered(ctx, lines)
	log.Info("Order submitted")

	return header.ID, nil
}

// submissionKey identifies one customer's submission of one cart's contents
func submissionKey(customerID, cartKey string, lines []cart.Line) string {
	var b strings.Builder
	b.WriteString(customerID)
	b.WriteString("\x00")
	b.WriteString(cartKey)
	for _, l := range lines {
		b.WriteString("\x00")
		b.WriteString(l.LineID())
		b.WriteString("*")
		b.WriteString(strconv.Itoa(l.Quantity))
	}
	return b.String()
}

// BuildLines snapshots cart lines as order lines of orderID
func BuildLines(orderID string, lines []cart.Line) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			OrderID:            orderID,
			ProductID:          l.ProductID,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			SelectedVariations: l.SelectedVariations.Clone(),
		})
	}
	return out
}
