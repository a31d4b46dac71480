// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"github.com/your-org/handmade-storefront/internal/domain/pricing"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/middleware"
)

// OrderSubmitter places orders; implemented by order.Assembler
type OrderSubmitter interface {
	Submit(ctx context.Context, c order.Cart, form order.ShippingForm, identity order.Identity) (string, error)
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	carts     *CartHandler
	assembler OrderSubmitter
	policy    pricing.Policy
	currency  string
	logger    logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(carts *CartHandler, assembler OrderSubmitter, policy pricing.Policy, currency string, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		assembler: assembler,
		policy:    policy,
		currency:  currency,
		logger:    logger,
	}
}

// SummaryResponse is the priced cart shown before submission
type SummaryResponse struct {
	Cart                 CartResponse    `json:"cart"`
	Totals               pricing.Totals  `json:"totals"`
	FreeShipping         bool            `json:"free_shipping"`
	AmountToFreeShipping decimal.Decimal `json:"amount_to_free_shipping"`
	Currency             string          `json:"currency"`
}

// GetSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	sessionID, store := h.carts.cart(c)
	cartResp := newCartResponse(sessionID, store)
	subtotal := cartResp.Totals.Subtotal

	respondData(c, http.StatusOK, "Checkout summary", SummaryResponse{
		Cart:                 cartResp,
		Totals:               pricing.ComputeTotals(subtotal, h.policy),
		FreeShipping:         h.policy.QualifiesForFreeShipping(subtotal),
		AmountToFreeShipping: h.policy.AmountToFreeShipping(subtotal),
		Currency:             h.currency,
	})
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)

	// anonymous callers are told to sign in whatever they sent
	var form order.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil && identity.IsAuthenticated() {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	_, store := h.carts.cart(c)

	orderID, err := h.assembler.Submit(c.Request.Context(), store, form, identity)
	if err != nil {
		h.respondSubmitError(c, orderID, err)
		return
	}

	respondData(c, http.StatusCreated, "Order placed successfully", gin.H{
		"order_id": orderID,
	})
}

func (h *CheckoutHandler) respondSubmitError(c *gin.Context, orderID string, err error) {
	var orderErr *order.Error
	if !errors.As(err, &orderErr) {
		h.logger.WithError(err).Error("Unexpected checkout error")
		respondError(c, http.StatusInternalServerError, CodeOrderFailed, "Order failed, please retry")
		return
	}

	switch orderErr.Kind {
	case order.KindNotAuthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    "Sign in to place your order",
			"code":     CodeNotAuthenticated,
			"redirect": middleware.SignInPath,
		})
	case order.KindEmptyCart:
		respondError(c, http.StatusBadRequest, CodeEmptyCart, "Your cart is empty")
	case order.KindInvalidShippingForm:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Shipping details are incomplete",
			"code":   CodeInvalidShipping,
			"fields": invalidFields(orderErr.Err),
		})
	case order.KindOrderLinesFailed:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":    "Order failed, please retry",
			"code":     CodeOrderIncomplete,
			"order_id": orderID,
		})
	default:
		respondError(c, http.StatusBadGateway, CodeOrderFailed, "Order failed, please retry")
	}
}

// invalidFields lists the json names of the fields that failed validation
func invalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, shippingFieldNames[fe.Field()])
	}
	return fields
}

var shippingFieldNames = map[string]string{
	"FullName":    "full_name",
	"AddressLine": "address_line",
	"City":        "city",
	"PostalCode":  "postal_code",
	"Country":     "country",
	"Phone":       "phone",
}
