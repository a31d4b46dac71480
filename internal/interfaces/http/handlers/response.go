// internal/interfaces/http/handlers/response.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of error responses
const (
	CodeInvalidRequest      = "invalid_request"
	CodeProductNotFound     = "product_not_found"
	CodeCatalogUnavailable  = "catalog_unavailable"
	CodeInvalidSelection    = "invalid_selection"
	CodeIncompleteSelection = "incomplete_selection"
	CodeLineNotFound        = "line_not_found"
	CodeNotAuthenticated    = "not_authenticated"
	CodeEmptyCart           = "empty_cart"
	CodeInvalidShipping     = "invalid_shipping_form"
	CodeOrderFailed         = "order_failed"
	CodeOrderIncomplete     = "order_incomplete"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

func respondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}
