package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// PublicHandler serves the storefront: catalog, checkout and order tracking.
type PublicHandler struct {
	catalog *service.CatalogService
	orders  *service.PublicOrderService
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(catalog *service.CatalogService, orders *service.PublicOrderService) *PublicHandler {
	return &PublicHandler{catalog: catalog, orders: orders}
}

// ListProducts handles GET /api/public/products
func (h *PublicHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"products": products})
}

// PlaceOrder handles POST /api/public/order
func (h *PublicHandler) PlaceOrder(c *gin.Context) {
	order, err := h.orders.PlaceOrder(c.Request.Context(), bindJSON[service.PublicOrderInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"order": gin.H{
		"id":        order.ID,
		"status":    order.Status,
		"createdAt": order.CreatedAt,
	}})
}

// Track handles POST /api/public/track
func (h *PublicHandler) Track(c *gin.Context) {
	order, err := h.orders.Track(c.Request.Context(), bindJSON[service.TrackInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"order": order})
}
