package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/herbal_api/internal/middleware"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// APIKeyHandler lets a signed-in partner manage their own API keys.
type APIKeyHandler struct {
	keys *service.APIKeyService
}

// NewAPIKeyHandler constructs an APIKeyHandler.
func NewAPIKeyHandler(keys *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// List handles GET /api/partner/api-keys
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context(), middleware.GetPartner(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if keys == nil {
		keys = []models.APIKeyView{}
	}
	utils.Success(c, http.StatusOK, gin.H{"apiKeys": keys})
}

// Create handles POST /api/partner/api-keys. The plaintext is returned once.
func (h *APIKeyHandler) Create(c *gin.Context) {
	plain, err := h.keys.CreateForPartner(c.Request.Context(), middleware.GetPartner(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"apiKey": plain})
}

// Delete handles DELETE /api/partner/api-keys/:id
func (h *APIKeyHandler) Delete(c *gin.Context) {
	if err := h.keys.Delete(c.Request.Context(), c.Param("id"), middleware.GetPartner(c).ID); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

// Reveal handles GET /api/partner/api-keys/:id/reveal
func (h *APIKeyHandler) Reveal(c *gin.Context) {
	plain, err := h.keys.Reveal(c.Request.Context(), c.Param("id"), service.PartnerScope(middleware.GetPartner(c).ID))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"apiKey": plain})
}
