package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/herbal_api/internal/metrics"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// AdminAuthenticator verifies admin session tokens.
type AdminAuthenticator interface {
	Authenticated(token string) bool
}

// AdminAuthMiddleware requires a valid admin session cookie.
type AdminAuthMiddleware struct {
	auth AdminAuthenticator
}

func NewAdminAuthMiddleware(auth AdminAuthenticator) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{auth: auth}
}

func (m *AdminAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.AdminCookieName)
		if err != nil || token == "" || !m.auth.Authenticated(token) {
			metrics.AuthFailuresTotal.WithLabelValues("admin").Inc()
			utils.Error(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Set("admin", true)
		c.Next()
	}
}
