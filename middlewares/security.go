package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Security headers
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// daftar waiter call selalu berubah, jangan di-cache browser/proxy
		if strings.HasPrefix(c.Request.URL.Path, "/admin/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
