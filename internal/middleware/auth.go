package middleware

import (
	"crypto/subtle"
	"net/http"

	"crimewatch/internal/common"

	"github.com/gin-gonic/gin"
)

// Auth guards the email API with static service-to-service keys. Callers
// present one of the configured keys in the X-API-Key header; comparison is
// constant-time.
func Auth(validKeys []string) gin.HandlerFunc {
	keys := make([][]byte, len(validKeys))
	for i, k := range validKeys {
		keys[i] = []byte(k)
	}

	return func(c *gin.Context) {
		presented := []byte(c.GetHeader("X-API-Key"))
		if len(presented) == 0 {
			common.Error(c, http.StatusUnauthorized, "missing X-API-Key header")
			c.Abort()
			return
		}

		for _, k := range keys {
			if subtle.ConstantTimeCompare(presented, k) == 1 {
				c.Next()
				return
			}
		}

		common.Error(c, http.StatusUnauthorized, "invalid API key")
		c.Abort()
	}
}
