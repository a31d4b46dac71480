// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
)

// ProductHandler serves variation groups and selection checks
type ProductHandler struct {
	catalog    product.Reader
	variations variation.Source
	logger     logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog product.Reader, variations variation.Source, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		catalog:    catalog,
		variations: variations,
		logger:     logger,
	}
}

// SelectionRequest names the chosen option ids, at most one per group
type SelectionRequest struct {
	OptionIDs []string `json:"option_ids"`
}

// SelectionResponse describes a resolved selection
type SelectionResponse struct {
	ProductID       string                     `json:"product_id"`
	Valid           bool                       `json:"valid"`
	Missing         []variation.Type           `json:"missing"`
	Selection       variation.Selection        `json:"selection"`
	PriceAdjustment decimal.Decimal            `json:"price_adjustment"`
	Summary         []variation.AdjustmentLine `json:"summary"`
	BasePrice       decimal.Decimal            `json:"base_price"`
	UnitPrice       decimal.Decimal            `json:"unit_price"`
}

// GetVariations handles GET /products/:id/variations
func (h *ProductHandler) GetVariations(c *gin.Context) {
	productID := c.Param("id")

	resolver := variation.NewResolver(h.variations, h.logger)
	groups := resolver.LoadGroups(c.Request.Context(), productID)
	if groups == nil {
		groups = []variation.Group{}
	}

	respondData(c, http.StatusOK, "Variations retrieved successfully", gin.H{
		"product_id": productID,
		"groups":     groups,
		"degraded":   resolver.Degraded(),
	})
}

// ValidateSelection handles POST /products/:id/selection
func (h *ProductHandler) ValidateSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	p, ok := h.loadProduct(c, c.Param("id"))
	if !ok {
		return
	}

	resolver, ok := h.resolve(c, p.ID, req.OptionIDs)
	if !ok {
		return
	}

	adjustment := resolver.PriceAdjustment()
	summary := resolver.Summary()
	if summary == nil {
		summary = []variation.AdjustmentLine{}
	}
	missing := resolver.Missing()
	if missing == nil {
		missing = []variation.Type{}
	}

	respondData(c, http.StatusOK, "Selection resolved", SelectionResponse{
		ProductID:       p.ID,
		Valid:           resolver.IsValid(),
		Missing:         missing,
		Selection:       resolver.Selection(),
		PriceAdjustment: adjustment,
		Summary:         summary,
		BasePrice:       p.Price,
		UnitPrice:       p.Price.Add(adjustment),
	})
}

// loadProduct writes the error response itself when it returns false
func (h *ProductHandler) loadProduct(c *gin.Context, id string) (*product.Product, bool) {
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if errors.Is(err, product.ErrNotFound) {
		respondError(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).WithField("product_id", id).Error("Failed to load product")
		respondError(c, http.StatusBadGateway, CodeCatalogUnavailable, "Catalog is unavailable, please retry")
		return nil, false
	}
	return p, true
}

// resolve loads the product's groups and applies optionIDs in order
func (h *ProductHandler) resolve(c *gin.Context, productID string, optionIDs []string) (*variation.Resolver, bool) {
	resolver := variation.NewResolver(h.variations, h.logger)
	resolver.LoadGroups(c.Request.Context(), productID)

	for _, id := range optionIDs {
		if err := resolver.SelectByID(id); err != nil {
			respondError(c, http.StatusBadRequest, CodeInvalidSelection, err.Error())
			return nil, false
		}
	}
	return resolver, true
}
