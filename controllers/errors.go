package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yo-Self/menu-mestre-facil-sub001/middlewares"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

var errGateClosed = errors.New("waiter calls are disabled for this menu")

// respondServiceError memetakan error service/store ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRestaurantRequired),
		errors.Is(err, services.ErrInvalidTableNumber),
		errors.Is(err, services.ErrInvalidStatus):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, store.ErrStatusConflict):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// authorizeRestaurant dipakai untuk route yang restaurant_id-nya baru diketahui setelah lookup
func authorizeRestaurant(c *gin.Context, restaurantID string) bool {
	claims := middlewares.ClaimsFrom(c)
	if claims == nil || !claims.CanAccessRestaurant(restaurantID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("no access to this restaurant"))
		return false
	}
	return true
}
