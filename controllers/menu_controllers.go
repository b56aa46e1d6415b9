package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/kds"
	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type MenuController struct {
	DB   *gorm.DB
	Gate *services.WaiterCallGate
	Hub  *kds.Hub
}

func NewMenuController(db *gorm.DB, gate *services.WaiterCallGate, hub *kds.Hub) *MenuController {
	return &MenuController{DB: db, Gate: gate, Hub: hub}
}

// GetMenus -> semua menu milik restoran
func (mc *MenuController) GetMenus(c *gin.Context) {
	var menus []models.Menu
	if err := mc.DB.Where("restaurant_id = ?", c.Param("restaurant_id")).Order("created_at DESC").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu
func (mc *MenuController) CreateMenu(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")

	var body struct {
		Name              string `json:"name" binding:"required"`
		IsActive          bool   `json:"is_active"`
		WaiterCallEnabled bool   `json:"waiter_call_enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	if err := mc.DB.Select("id").First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	menu := models.Menu{
		RestaurantID:      restaurantID,
		Name:              body.Name,
		IsActive:          body.IsActive,
		WaiterCallEnabled: body.WaiterCallEnabled,
	}
	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// menu baru bisa mengubah pilihan menu aktif untuk gate level restoran
	mc.Gate.Invalidate(c.Request.Context(), "", restaurantID)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// ToggleWaiterCall -> manager menyalakan/mematikan fitur panggil pelayan untuk satu menu
func (mc *MenuController) ToggleWaiterCall(c *gin.Context) {
	var body struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu, ok := mc.findMenu(c)
	if !ok || !authorizeRestaurant(c, menu.RestaurantID) {
		return
	}

	if err := mc.DB.Model(&menu).Update("waiter_call_enabled", *body.Enabled).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	menu.WaiterCallEnabled = *body.Enabled

	mc.Gate.Invalidate(c.Request.Context(), menu.ID, menu.RestaurantID)
	if mc.Hub != nil {
		mc.Hub.BroadcastMenuUpdate(menu.RestaurantID, menu)
	}
	utils.InfoLogger.Printf("Waiter call for menu %s set to %v", menu.ID, *body.Enabled)
	utils.RespondJSON(c, http.StatusOK, "Waiter call setting updated", menu)
}

func (mc *MenuController) findMenu(c *gin.Context) (models.Menu, bool) {
	var menu models.Menu
	if err := mc.DB.First(&menu, "id = ?", c.Param("menu_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return menu, false
	}
	return menu, true
}
