package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/herbal_api/internal/middleware"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// PartnerHandler serves the partner dashboard and partner API.
type PartnerHandler struct {
	accounts   *service.PartnerAccountService
	auth       *service.PartnerAuthService
	orders     *service.PartnerOrderService
	catalog    *service.CatalogService
	sessionTTL time.Duration
	secure     bool
}

// NewPartnerHandler constructs a PartnerHandler. secure marks session cookies
// Secure and should be set in production.
func NewPartnerHandler(
	accounts *service.PartnerAccountService,
	auth *service.PartnerAuthService,
	orders *service.PartnerOrderService,
	catalog *service.CatalogService,
	sessionTTL time.Duration,
	secure bool,
) *PartnerHandler {
	return &PartnerHandler{
		accounts:   accounts,
		auth:       auth,
		orders:     orders,
		catalog:    catalog,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

func (h *PartnerHandler) startSession(c *gin.Context, partnerID string) {
	token, exp := h.auth.IssueSession(partnerID, h.sessionTTL)
	http.SetCookie(c.Writer, session.NewCookie(session.PartnerCookieName, token, exp, h.secure))
}

// Register handles POST /api/partner/register
func (h *PartnerHandler) Register(c *gin.Context) {
	p, err := h.accounts.Register(c.Request.Context(), bindJSON[service.RegisterInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, p.ID)
	utils.Success(c, http.StatusOK, gin.H{"partner": gin.H{"id": p.ID, "status": p.Status}})
}

// Login handles POST /api/partner/login
func (h *PartnerHandler) Login(c *gin.Context) {
	p, err := h.accounts.Login(c.Request.Context(), bindJSON[service.LoginInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.startSession(c, p.ID)
	utils.Success(c, http.StatusOK, nil)
}

// Logout handles POST /api/partner/logout
func (h *PartnerHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, session.ClearCookie(session.PartnerCookieName, h.secure))
	utils.Success(c, http.StatusOK, nil)
}

// Me handles GET /api/partner/me
func (h *PartnerHandler) Me(c *gin.Context) {
	utils.Success(c, http.StatusOK, gin.H{"partner": middleware.GetPartner(c).Summary()})
}

// ListOrders handles GET /api/partner/orders
func (h *PartnerHandler) ListOrders(c *gin.Context) {
	p := middleware.GetPartner(c)
	orders, err := h.orders.ListPartnerOrders(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	utils.Success(c, http.StatusOK, gin.H{"partner": p.Summary(), "orders": orders})
}

// CreateOrder handles POST /api/partner/orders
func (h *PartnerHandler) CreateOrder(c *gin.Context) {
	order, err := h.orders.CreatePartnerOrder(c.Request.Context(), middleware.GetPartner(c), bindJSON[service.PartnerOrderInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"order": order})
}

// GetOrder handles GET /api/partner/orders/:id
func (h *PartnerHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetPartnerOrder(c.Request.Context(), middleware.GetPartner(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"order": order})
}

// ListProducts handles GET /api/partner/products
func (h *PartnerHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"partner": middleware.GetPartner(c).Summary(), "products": products})
}

// GetPayout handles GET /api/partner/payout
func (h *PartnerHandler) GetPayout(c *gin.Context) {
	payout, err := h.accounts.GetPayout(c.Request.Context(), middleware.GetPartner(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"payout": payout})
}

// UpdatePayout handles PATCH /api/partner/payout
func (h *PartnerHandler) UpdatePayout(c *gin.Context) {
	payout, err := h.accounts.UpdatePayout(c.Request.Context(), middleware.GetPartner(c).ID, bindJSON[service.PayoutInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"payout": payout})
}

// ChangePassword handles PATCH /api/partner/password
func (h *PartnerHandler) ChangePassword(c *gin.Context) {
	err := h.accounts.ChangePassword(c.Request.Context(), middleware.GetPartner(c).ID, bindJSON[service.ChangePasswordInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, nil)
}

// Analytics handles GET /api/partner/analytics
func (h *PartnerHandler) Analytics(c *gin.Context) {
	a, err := h.accounts.Analytics(c.Request.Context(), middleware.GetPartner(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"analytics": a})
}
