// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
)

const (
	// HeaderCartSession carries the cart session id for API clients
	HeaderCartSession = "X-Cart-Session"

	// CartSessionCookie carries the cart session id for browsers
	CartSessionCookie = "cart_session"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	sessions  *cart.Sessions
	products  *ProductHandler
	cookieTTL time.Duration
	secure    bool
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *cart.Sessions, products *ProductHandler, cookieTTL time.Duration, secure bool) *CartHandler {
	return &CartHandler{
		sessions:  sessions,
		products:  products,
		cookieTTL: cookieTTL,
		secure:    secure,
	}
}

// AddToCartRequest adds one unit of a product with the chosen options
type AddToCartRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	OptionIDs []string `json:"option_ids"`
}

// UpdateCartItemRequest sets a line's quantity; zero or less removes the line
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// LineResponse is a cart line as returned by the API
type LineResponse struct {
	LineID string `json:"line_id"`
	cart.Line
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartResponse is the full cart
type CartResponse struct {
	SessionID string         `json:"session_id"`
	Lines     []LineResponse `json:"lines"`
	Totals    cart.Totals    `json:"totals"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, store := h.cart(c)
	respondData(c, http.StatusOK, "Cart retrieved successfully", newCartResponse(sessionID, store))
}

// AddToCart handles POST /cart/items. The selection must cover every
// variation group of the product.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	p, ok := h.products.loadProduct(c, req.ProductID)
	if !ok {
		return
	}

	resolver, ok := h.products.resolve(c, p.ID, req.OptionIDs)
	if !ok {
		return
	}
	if !resolver.IsValid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Choose an option for every variation",
			"code":    CodeIncompleteSelection,
			"missing": resolver.Missing(),
		})
		return
	}

	sessionID, store := h.cart(c)
	line, err := store.Add(c.Request.Context(), snapshotOf(p.ID, p.Name, p.Price, p.ImageURL, resolver.Selection()))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	respondData(c, http.StatusCreated, "Item added to cart successfully", gin.H{
		"line": newLineResponse(line),
		"cart": newCartResponse(sessionID, store),
	})
}

// UpdateCartItem handles PUT /cart/items/:line_id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	sessionID, store := h.cart(c)
	lineID := c.Param("line_id")
	if _, ok := store.Get(lineID); !ok {
		respondError(c, http.StatusNotFound, CodeLineNotFound, "Cart line not found")
		return
	}

	store.SetQuantity(c.Request.Context(), lineID, *req.Quantity)
	respondData(c, http.StatusOK, "Cart item updated successfully", newCartResponse(sessionID, store))
}

// RemoveCartItem handles DELETE /cart/items/:line_id. Removing an absent
// line succeeds.
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	sessionID, store := h.cart(c)
	store.Remove(c.Request.Context(), c.Param("line_id"))
	respondData(c, http.StatusOK, "Cart item removed successfully", newCartResponse(sessionID, store))
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID, store := h.cart(c)
	store.Clear(c.Request.Context())
	respondData(c, http.StatusOK, "Cart cleared successfully", newCartResponse(sessionID, store))
}

// cart returns the caller's session id and cart, issuing a new session
// when the request carries none.
func (h *CartHandler) cart(c *gin.Context) (string, *cart.Store) {
	sessionID := SessionID(c)
	if sessionID == "" {
		sessionID = uuid.New().String()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, sessionID, int(h.cookieTTL.Seconds()), "/", "", h.secure, true)
	}
	c.Header(HeaderCartSession, sessionID)
	return sessionID, h.sessions.Get(c.Request.Context(), sessionID)
}

// SessionID reads the cart session id from the header, then the cookie.
// Ids that are not UUIDs are ignored.
func SessionID(c *gin.Context) string {
	if id := c.GetHeader(HeaderCartSession); isSessionID(id) {
		return id
	}
	if id, err := c.Cookie(CartSessionCookie); err == nil && isSessionID(id) {
		return id
	}
	return ""
}

func isSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func snapshotOf(id, name string, basePrice decimal.Decimal, imageURL string, selection variation.Selection) cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:        id,
		Name:      name,
		UnitPrice: basePrice.Add(selection.PriceAdjustment()),
		ImageURL:  imageURL,
		Selection: selection,
	}
}

func newLineResponse(l cart.Line) LineResponse {
	if l.SelectedVariations == nil {
		l.SelectedVariations = variation.Selection{}
	}
	return LineResponse{LineID: l.LineID(), Line: l, LineTotal: l.Total()}
}

func newCartResponse(sessionID string, store *cart.Store) CartResponse {
	lines := store.Lines()
	out := make([]LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, newLineResponse(l))
	}
	return CartResponse{
		SessionID: sessionID,
		Lines:     out,
		Totals:    cart.ComputeTotals(lines),
	}
}
