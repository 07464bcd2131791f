package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookSecretHeader carries the shared secret on provider webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookAuth rejects webhook calls that do not present the shared secret.
// An empty secret rejects everything.
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(WebhookSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			GetLoggerFromCtx(c.Request.Context()).Warn("Webhook secret rejected", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		c.Next()
	}
}
