package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/metrics"
	"github.com/GTDGit/herbal_api/internal/middleware"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// AdminHandler serves the back-office: admin sessions, partner management
// and order management.
type AdminHandler struct {
	auth     *service.AdminAuthService
	partners *service.AdminPartnerService
	keys     *service.APIKeyService
	orders   *service.AdminOrderService
	limiter  middleware.AttemptLimiter
	secure   bool
}

// NewAdminHandler constructs an AdminHandler. limiter throttles failed
// logins per client IP and may be nil.
func NewAdminHandler(
	auth *service.AdminAuthService,
	partners *service.AdminPartnerService,
	keys *service.APIKeyService,
	orders *service.AdminOrderService,
	limiter middleware.AttemptLimiter,
	secure bool,
) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		partners: partners,
		keys:     keys,
		orders:   orders,
		limiter:  limiter,
		secure:   secure,
	}
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var password string
	if req := bindJSON[adminLoginRequest](c); req != nil {
		password = req.Password
	}

	ctx := c.Request.Context()
	throttleKey := "admin:" + c.ClientIP()
	if h.limiter != nil && h.limiter.Blocked(ctx, throttleKey) {
		metrics.AuthThrottledTotal.WithLabelValues("admin").Inc()
		utils.Error(c, http.StatusTooManyRequests, "Too many invalid authentication attempts")
		return
	}

	token, exp, err := h.auth.Login(password)
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("admin_login").Inc()
		if h.limiter != nil {
			h.limiter.RecordFailure(ctx, throttleKey)
		}
		respondError(c, err)
		return
	}
	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, throttleKey); err != nil {
			log.Warn().Err(err).Msg("Failed to clear admin login failures")
		}
	}
	http.SetCookie(c.Writer, session.NewCookie(session.AdminCookieName, token, exp, h.secure))
	utils.Success(c, http.StatusOK, nil)
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, session.ClearCookie(session.AdminCookieName, h.secure))
	utils.Success(c, http.StatusOK, nil)
}

// ListPartners handles GET /api/admin/partners
func (h *AdminHandler) ListPartners(c *gin.Context) {
	partners, err := h.partners.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"partners": partners})
}

// partnerActionRequest is the body of POST /api/admin/partners. Which fields
// are read depends on Action.
type partnerActionRequest struct {
	PartnerID string `json:"partnerId"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	APIKeyID  string `json:"apiKeyId"`
	Password  string `json:"password"`
	IsActive  *bool  `json:"isActive"`
}

// PartnerAction handles POST /api/admin/partners
func (h *AdminHandler) PartnerAction(c *gin.Context) {
	req := bindJSON[partnerActionRequest](c)
	if req == nil {
		req = &partnerActionRequest{}
	}
	partnerID := strings.TrimSpace(req.PartnerID)
	if partnerID == "" {
		utils.Error(c, http.StatusBadRequest, "partnerId required")
		return
	}
	ctx := c.Request.Context()

	switch req.Action {
	case "setStatus":
		p, err := h.partners.SetStatus(ctx, partnerID, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"partner": gin.H{"id": p.ID, "status": p.Status}})

	case "createApiKey":
		plain, err := h.keys.CreateForPartnerStrict(ctx, partnerID)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"apiKey": plain})

	case "revealApiKey":
		if strings.TrimSpace(req.APIKeyID) == "" {
			utils.Error(c, http.StatusBadRequest, "apiKeyId required")
			return
		}
		plain, err := h.keys.Reveal(ctx, req.APIKeyID, service.AdminScope(partnerID))
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"apiKey": plain})

	case "setPassword":
		if err := h.partners.SetPassword(ctx, partnerID, req.Password); err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, nil)

	case "setKeyActive":
		if req.IsActive == nil {
			utils.Error(c, http.StatusBadRequest, "isActive required")
			return
		}
		if err := h.keys.SetActive(ctx, req.APIKeyID, *req.IsActive); err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, nil)

	default:
		utils.Error(c, http.StatusBadRequest, "Unknown action")
	}
}

// ListOrders handles GET /api/admin/orders. mode=count returns only the
// number of matching orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	f := service.ParseOrderFilter(c.Query("q"), c.Query("source"), c.Query("status"))

	if c.Query("mode") == "count" {
		n, err := h.orders.Count(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"count": n})
		return
	}

	orders, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	utils.Success(c, http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrder handles PATCH /api/admin/orders
func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	o, err := h.orders.UpdateOrder(c.Request.Context(), bindJSON[service.UpdateOrderInput](c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, gin.H{"order": gin.H{
		"id":                  o.ID,
		"status":              o.Status,
		"partnerPayoutStatus": o.PartnerPayoutStatus,
	}})
}
