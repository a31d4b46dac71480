package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/handmade-storefront/internal/config"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
	"github.com/your-org/handmade-storefront/internal/domain/order"
	"github.com/your-org/handmade-storefront/internal/domain/pricing"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/handmade-storefront/internal/pkg/auth"
)

const session = "6b0d5c1e-2f7a-4c8e-9d3b-1a2b3c4d5e6f"

// fakeCatalog serves a fixed catalog
type fakeCatalog struct {
	products   map[string]product.Product
	variations map[string][]variation.Option
	fail       bool
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*product.Product, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	p, ok := f.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) ListVariations(_ context.Context, productID string) ([]variation.Option, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	return f.variations[productID], nil
}

// fakeOrders records writes and can fail the line write
type fakeOrders struct {
	mu        sync.Mutex
	headers   []*order.Order
	lines     []order.OrderLine
	failLines bool
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, o)
	return nil
}

func (f *fakeOrders) CreateOrderLines(_ context.Context, lines []order.OrderLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLines {
		return errors.New("insert failed")
	}
	f.lines = append(f.lines, lines...)
	return nil
}

type testEnv struct {
	server  *Server
	catalog *fakeCatalog
	orders  *fakeOrders
	jwt     *auth.JWTManager
	kv      *cart.MemoryKV
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := logtest.NewNullLogger()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Cart:   config.CartConfig{StorageKey: "cart", TTL: time.Hour},
		JWT:    config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Pricing: config.PricingConfig{
			FreeShippingThreshold: decimal.NewFromInt(100),
			FlatShippingFee:       decimal.NewFromInt(15),
			TaxRate:               decimal.Zero,
			Currency:              "USD",
		},
	}

	catalog := &fakeCatalog{
		products: map[string]product.Product{
			"mug":    {ID: "mug", Name: "Stoneware Mug", Price: decimal.NewFromInt(30), ImageURL: "/mug.jpg", IsActive: true},
			"candle": {ID: "candle", Name: "Beeswax Candle", Price: decimal.RequireFromString("18.50"), IsActive: true},
		},
		variations: map[string][]variation.Option{
			"mug": {
				{ID: "c-blue", ProductID: "mug", Type: variation.TypeColor, Value: "Blue", StockQuantity: 3},
				{ID: "c-red", ProductID: "mug", Type: variation.TypeColor, Value: "Red", StockQuantity: 0},
				{ID: "s-large", ProductID: "mug", Type: variation.TypeSize, Value: "Large", PriceAdjustment: decimal.NewFromInt(8), StockQuantity: 2},
				{ID: "s-small", ProductID: "mug", Type: variation.TypeSize, Value: "Small", PriceAdjustment: decimal.RequireFromString("-2.50"), StockQuantity: 2},
			},
		},
	}
	orders := &fakeOrders{}
	policy := pricing.PolicyFromConfig(cfg)
	kv := cart.NewMemoryKV()
	jwtManager := auth.NewJWTManager(cfg)

	server := NewServer(cfg, logger, Dependencies{
		Sessions:   cart.NewSessions(kv, cfg.Cart.StorageKey, logger),
		Catalog:    catalog,
		Variations: catalog,
		Orders:     order.NewAssembler(orders, policy, logger),
		Policy:     policy,
		JWT:        jwtManager,
		Health: map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
		},
	})

	return &testEnv{server: server, catalog: catalog, orders: orders, jwt: jwtManager, kv: kv}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handlers.HeaderCartSession, session)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken("cust-1", "ada@example.com")
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	OrderID string          `json:"order_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

var form = map[string]any{
	"full_name":    "Ada Lovelace",
	"address_line": "12 Loom St",
	"city":         "London",
	"postal_code":  "N1 7AA",
	"country":      "UK",
	"phone":        "+44 20 7946 0000",
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"healthy"`)
}

func TestGetVariations(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/api/v1/products/mug/variations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Groups   []variation.Group `json:"groups"`
		Degraded bool              `json:"degraded"`
	}
	decode(t, w, &data)
	require.Len(t, data.Groups, 2)
	assert.Equal(t, variation.TypeColor, data.Groups[0].Type)
	assert.Equal(t, []string{"Blue", "Red"}, []string{data.Groups[0].Options[0].Value, data.Groups[0].Options[1].Value})
	assert.False(t, data.Degraded)
}

func TestGetVariations_FetchFailureDegradesToEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.fail = true

	w := env.doJSON(t, http.MethodGet, "/api/v1/products/mug/variations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Groups   []variation.Group `json:"groups"`
		Degraded bool              `json:"degraded"`
	}
	decode(t, w, &data)
	assert.Empty(t, data.Groups)
	assert.NotNil(t, data.Groups)
	assert.True(t, data.Degraded)
}

func TestValidateSelection(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/products/mug/selection", map[string]any{
		"option_ids": []string{"c-blue", "s-small"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data handlers.SelectionResponse
	decode(t, w, &data)
	assert.True(t, data.Valid)
	assert.True(t, data.UnitPrice.Equal(decimal.RequireFromString("27.50")))
	require.Len(t, data.Summary, 1)
	assert.Equal(t, "-2.50", data.Summary[0].Label)
}

func TestValidateSelection_OutOfStock(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/products/mug/selection", map[string]any{
		"option_ids": []string{"c-red"},
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.CodeInvalidSelection, decode(t, w, nil).Code)
}

func TestValidateSelection_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/products/nope/selection", map[string]any{}, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	// incomplete selection is rejected
	w := env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": "mug", "option_ids": []string{"c-blue"},
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.CodeIncompleteSelection, decode(t, w, nil).Code)

	add := map[string]any{"product_id": "mug", "option_ids": []string{"c-blue", "s-large"}}
	for i := 0; i < 3; i++ {
		w = env.doJSON(t, http.MethodPost, "/api/v1/cart/items", add, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session, w.Header().Get(handlers.HeaderCartSession))

	var got handlers.CartResponse
	decode(t, w, &got)
	require.Len(t, got.Lines, 2)
	mugLine := got.Lines[0]
	assert.Equal(t, "mug|color=c-blue|size=s-large", mugLine.LineID)
	assert.Equal(t, 3, mugLine.Quantity)
	assert.True(t, mugLine.UnitPrice.Equal(decimal.NewFromInt(38)))
	assert.Equal(t, 4, got.Totals.ItemCount)
	assert.True(t, got.Totals.Subtotal.Equal(decimal.RequireFromString("132.50")))

	// the cart is mirrored under the session key
	_, err := env.kv.Get(context.Background(), cart.SessionKey("cart", session))
	assert.NoError(t, err)

	lineURL := "/api/v1/cart/items/" + url.PathEscape(mugLine.LineID)
	w = env.doJSON(t, http.MethodPut, lineURL, map[string]any{"quantity": 1}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, 2, got.Totals.ItemCount)

	w = env.doJSON(t, http.MethodPut, lineURL, map[string]any{"quantity": 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Len(t, got.Lines, 1)

	w = env.doJSON(t, http.MethodPut, lineURL, map[string]any{"quantity": 2}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodDelete, "/api/v1/cart/items/candle", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.doJSON(t, http.MethodDelete, "/api/v1/cart/items/candle", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Empty(t, got.Lines)
}

func TestCart_NewSessionIssuesCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(handlers.HeaderCartSession)
	assert.NotEmpty(t, issued)
	assert.Contains(t, w.Header().Get("Set-Cookie"), handlers.CartSessionCookie+"="+issued)
}

func TestCheckoutSummary(t *testing.T) {
	env := newTestEnv(t)
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")

	w := env.doJSON(t, http.MethodGet, "/api/v1/checkout/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var summary handlers.SummaryResponse
	decode(t, w, &summary)
	assert.True(t, summary.Totals.Shipping.Equal(decimal.NewFromInt(15)))
	assert.True(t, summary.Totals.GrandTotal.Equal(decimal.RequireFromString("33.50")))
	assert.False(t, summary.FreeShipping)
	assert.True(t, summary.AmountToFreeShipping.Equal(decimal.RequireFromString("81.50")))
}

func TestCheckout_RequiresSignIn(t *testing.T) {
	env := newTestEnv(t)
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")

	w := env.doJSON(t, http.MethodPost, "/api/v1/checkout", form, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/signin"`)
	assert.Empty(t, env.orders.headers)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/v1/checkout", form, env.token(t))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.CodeEmptyCart, decode(t, w, nil).Code)
	assert.Empty(t, env.orders.headers)
}

func TestCheckout_InvalidShippingForm(t *testing.T) {
	env := newTestEnv(t)
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")

	w := env.doJSON(t, http.MethodPost, "/api/v1/checkout", map[string]any{"full_name": "Ada"}, env.token(t))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "address_line")
	assert.Empty(t, env.orders.headers)
}

func TestCheckout_Success(t *testing.T) {
	env := newTestEnv(t)
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "mug", "option_ids": []string{"c-blue", "s-large"}}, "")
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")

	w := env.doJSON(t, http.MethodPost, "/api/v1/checkout", form, env.token(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		OrderID string `json:"order_id"`
	}
	decode(t, w, &data)
	require.Len(t, env.orders.headers, 1)
	header := env.orders.headers[0]
	assert.Equal(t, data.OrderID, header.ID)
	assert.Equal(t, "cust-1", header.CustomerID)
	assert.True(t, header.TotalAmount.Equal(decimal.RequireFromString("71.50")))
	require.Len(t, env.orders.lines, 2)
	assert.Equal(t, "s-large", env.orders.lines[0].SelectedVariations[variation.TypeSize].ID)

	w = env.doJSON(t, http.MethodGet, "/api/v1/cart", nil, "")
	var got handlers.CartResponse
	decode(t, w, &got)
	assert.Empty(t, got.Lines)
}

func TestCheckout_LineFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	env.orders.failLines = true
	env.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "candle"}, "")

	w := env.doJSON(t, http.MethodPost, "/api/v1/checkout", form, env.token(t))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, handlers.CodeOrderIncomplete, resp.Code)
	require.Len(t, env.orders.headers, 1)
	assert.Equal(t, env.orders.headers[0].ID, resp.OrderID)

	w = env.doJSON(t, http.MethodGet, "/api/v1/cart", nil, "")
	var got handlers.CartResponse
	decode(t, w, &got)
	assert.Len(t, got.Lines, 1)
}
