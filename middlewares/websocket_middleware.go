package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// WebSocketAuthMiddleware -> browser tidak bisa set header saat upgrade, token lewat ?token=
func WebSocketAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		// Validasi token
		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}
