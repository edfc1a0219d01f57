package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns the browser cross-origin policy for the email API. With no
// origins configured it allows all, matching a public front-end deployment;
// a configured list locks the API down to those sites.
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	if len(methods) > 0 {
		cfg.AllowMethods = methods
	}
	if len(headers) > 0 {
		cfg.AllowHeaders = headers
	} else {
		cfg.AddAllowHeaders("X-API-Key")
	}

	return cors.New(cfg)
}
