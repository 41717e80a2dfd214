package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"noticore/internal/common"
)

const apiKeyHeader = "X-API-Key"

// Auth returns middleware that validates the X-API-Key header against the
// configured keys. Callers are the back-office forms and dashboards, so
// this is service-to-service auth, not end-user sessions.
func Auth(validKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			common.Error(c, http.StatusUnauthorized, "missing "+apiKeyHeader+" header")
			c.Abort()
			return
		}

		if !keyMatches(key, validKeys) {
			common.Error(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}

		c.Next()
	}
}

// keyMatches compares the presented key against each valid key in constant
// time.
func keyMatches(key string, validKeys []string) bool {
	for _, valid := range validKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return true
		}
	}
	return false
}
