package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/metrics"
	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// APIKeyHeader carries a partner API key.
const APIKeyHeader = "x-api-key"

const partnerContextKey = "partner"

// CredentialMode selects which partner credentials a route accepts.
type CredentialMode int

const (
	// AnyCredential accepts an API key or a session cookie; the key wins.
	AnyCredential CredentialMode = iota
	// SessionOnly accepts only the dashboard session cookie.
	SessionOnly
	// APIKeyOnly accepts only the x-api-key header.
	APIKeyOnly
)

// PartnerResolver resolves a credential to an active partner.
type PartnerResolver interface {
	Resolve(ctx context.Context, cred service.PartnerCredential) (*models.Partner, error)
}

// PartnerAuthMiddleware authenticates partner requests.
type PartnerAuthMiddleware struct {
	resolver PartnerResolver
	limiter  AttemptLimiter
}

// NewPartnerAuthMiddleware constructs a PartnerAuthMiddleware.
func NewPartnerAuthMiddleware(resolver PartnerResolver, limiter AttemptLimiter) *PartnerAuthMiddleware {
	return &PartnerAuthMiddleware{resolver: resolver, limiter: limiter}
}

// Handle returns a Gin middleware that requires a partner credential of the given mode.
func (m *PartnerAuthMiddleware) Handle(mode CredentialMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := credentialFor(c, mode)
		if cred == nil {
			msg := "Unauthorized"
			if mode == APIKeyOnly {
				msg = "Missing API key"
			}
			utils.Error(c, http.StatusUnauthorized, msg)
			c.Abort()
			return
		}

		if m.limiter != nil && m.limiter.Blocked(c.Request.Context(), c.ClientIP()) {
			metrics.AuthThrottledTotal.WithLabelValues("partner").Inc()
			utils.Error(c, http.StatusTooManyRequests, "Too many invalid authentication attempts")
			c.Abort()
			return
		}

		partner, err := m.resolver.Resolve(c.Request.Context(), cred)
		if errors.Is(err, utils.ErrUnauthorized) {
			m.handleAuthError(c, cred, mode)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Partner authentication unavailable")
			utils.Error(c, http.StatusServiceUnavailable, "Database not ready")
			c.Abort()
			return
		}

		c.Set(partnerContextKey, partner)
		c.Set("partner_id", partner.ID)
		c.Next()
	}
}

func credentialFor(c *gin.Context, mode CredentialMode) service.PartnerCredential {
	apiKey := c.GetHeader(APIKeyHeader)
	cookie, _ := c.Cookie(session.PartnerCookieName)
	switch mode {
	case SessionOnly:
		apiKey = ""
	case APIKeyOnly:
		cookie = ""
	}
	return service.CredentialFromRequest(apiKey, cookie)
}

func (m *PartnerAuthMiddleware) handleAuthError(c *gin.Context, cred service.PartnerCredential, mode CredentialMode) {
	kind := "session"
	if _, ok := cred.(service.APIKeyCredential); ok {
		kind = "api_key"
	}
	metrics.AuthFailuresTotal.WithLabelValues(kind).Inc()
	if m.limiter != nil {
		m.limiter.RecordFailure(c.Request.Context(), c.ClientIP())
	}

	msg := "Unauthorized"
	if mode == APIKeyOnly {
		msg = "Invalid API key"
	}
	utils.Error(c, http.StatusUnauthorized, msg)
	c.Abort()
}

// GetPartner returns the authenticated partner from context.
func GetPartner(c *gin.Context) *models.Partner {
	p, _ := c.Get(partnerContextKey)
	if p == nil {
		return nil
	}
	return p.(*models.Partner)
}
