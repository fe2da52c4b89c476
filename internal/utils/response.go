package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Success writes {"ok": true, ...fields}.
func Success(c *gin.Context, code int, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.Header("X-Request-Id", getRequestID(c))
	c.JSON(code, body)
}

// Error writes {"ok": false, "error": message}.
func Error(c *gin.Context, code int, message string) {
	c.Header("X-Request-Id", getRequestID(c))
	c.JSON(code, gin.H{"ok": false, "error": message})
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
