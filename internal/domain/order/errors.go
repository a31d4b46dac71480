// internal/domain/order/errors.go
package order

import "fmt"

// Kind classifies submission failures
type Kind string

const (
	KindNotAuthenticated    Kind = "not_authenticated"
	KindEmptyCart           Kind = "empty_cart"
	KindInvalidShippingForm Kind = "invalid_shipping_form"
	KindOrderHeaderFailed   Kind = "order_header_failed"
	KindOrderLinesFailed    Kind = "order_lines_failed"
)

// Error is returned by Assembler.Submit. For KindOrderLinesFailed, OrderID
// names the header that was written without lines.
type Error struct {
	Kind    Kind
	OrderID string
	Err     error
}

// Sentinels for errors.Is
var (
	ErrNotAuthenticated    = &Error{Kind: KindNotAuthenticated}
	ErrEmptyCart           = &Error{Kind: KindEmptyCart}
	ErrInvalidShippingForm = &Error{Kind: KindInvalidShippingForm}
	ErrOrderHeaderFailed   = &Error{Kind: KindOrderHeaderFailed}
	ErrOrderLinesFailed    = &Error{Kind: KindOrderLinesFailed}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.OrderID != "" {
		msg = fmt.Sprintf("%s (order %s)", msg, e.OrderID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
