// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/handmade-storefront/internal/pkg/auth"
)

// Handlers groups the API handlers
type Handlers struct {
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
}

// SetupRoutes registers all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	SetupProductRoutes(rg, h.Products)
	SetupCartRoutes(rg, h.Cart)
	SetupCheckoutRoutes(rg, h.Checkout, jwtManager)
}

// SetupProductRoutes sets up product variation routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("/:id/variations", h.GetVariations)
		products.POST("/:id/selection", h.ValidateSelection)
	}
}

// SetupCartRoutes sets up cart routes; carts belong to sessions, not users
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:line_id", h.UpdateCartItem)
		cart.DELETE("/items/:line_id", h.RemoveCartItem)
	}
}

// SetupCheckoutRoutes sets up checkout routes. Authentication is optional at
// the router so the checkout flow itself can answer with a sign-in redirect.
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler, jwtManager *auth.JWTManager) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		checkout.GET("/summary", h.GetSummary)
		checkout.POST("", h.Submit)
	}
}
