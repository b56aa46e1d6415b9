package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/services"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type RestaurantController struct {
	DB   *gorm.DB
	Gate *services.WaiterCallGate
}

func NewRestaurantController(db *gorm.DB, gate *services.WaiterCallGate) *RestaurantController {
	return &RestaurantController{DB: db, Gate: gate}
}

// CreateRestaurant (admin)
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{Name: body.Name, Slug: body.Slug}
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Printf("Restaurant %s (%s) created", restaurant.ID, restaurant.Name)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetRestaurantByID
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.Preload("Menus").First(&restaurant, "id = ?", c.Param("restaurant_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// GetPublicMenu -> menu aktif lengkap dengan kategori dan hidangan, untuk pelanggan
func (rc *RestaurantController) GetPublicMenu(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")

	var menu models.Menu
	err := rc.DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Categories.Dishes", "is_available = ?", true).
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("created_at DESC").
		First(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("restaurant has no active menu"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	gate := rc.Gate.Check(c.Request.Context(), services.GateQuery{MenuID: menu.ID, RestaurantID: restaurantID})
	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"menu":                menu,
		"waiter_call_enabled": gate.Open(),
	})
}
