package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

// context keys
const (
	CtxStaffID = "staff_id"
	CtxRole    = "role"
	CtxClaims  = "claims"
)

// AuthMiddleware memverifikasi bearer token dashboard staff
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token tidak ditemukan"))
			c.Abort()
			return
		}

		// Validasi format token
		if !strings.HasPrefix(token, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimPrefix(token, "Bearer "))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *utils.StaffClaims) {
	c.Set(CtxStaffID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxClaims, claims)
}

// ClaimsFrom returns the verified token claims, or nil outside an authenticated route.
func ClaimsFrom(c *gin.Context) *utils.StaffClaims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.StaffClaims)
	return claims
}

// RestaurantAccess -> staff hanya boleh mengakses restoran yang ada di token
func RestaurantAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
			c.Abort()
			return
		}
		if !claims.CanAccessRestaurant(c.Param(param)) {
			utils.RespondError(c, http.StatusForbidden, errors.New("no access to this restaurant"))
			c.Abort()
			return
		}
		c.Next()
	}
}
