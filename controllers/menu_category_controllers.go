package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

// CreateCategory
func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mcc.DB.Select("id", "restaurant_id").First(&menu, "id = ?", c.Param("menu_id")).Error; err != nil {
		respondLookupError(c, err, "menu not found")
		return
	}
	if !authorizeRestaurant(c, menu.RestaurantID) {
		return
	}

	category := models.MenuCategory{MenuID: menu.ID, Name: body.Name, Position: body.Position}
	if err := mcc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// CreateDish
func (mcc *MenuCategoryController) CreateDish(c *gin.Context) {
	var body struct {
		Name        string   `json:"name" binding:"required"`
		Price       *float64 `json:"price" binding:"required"`
		Description string   `json:"description"`
		ImageURL    *string  `json:"image_url"`
		IsAvailable *bool    `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if *body.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, "id = ?", c.Param("category_id")).Error; err != nil {
		respondLookupError(c, err, "category not found")
		return
	}
	var menu models.Menu
	if err := mcc.DB.Select("id", "restaurant_id").First(&menu, "id = ?", category.MenuID).Error; err != nil {
		respondLookupError(c, err, "menu not found")
		return
	}
	if !authorizeRestaurant(c, menu.RestaurantID) {
		return
	}

	dish := models.Dish{
		CategoryID:  category.ID,
		Name:        body.Name,
		Price:       *body.Price,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		IsAvailable: body.IsAvailable == nil || *body.IsAvailable,
	}
	if err := mcc.DB.Create(&dish).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dish created", dish)
}

func respondLookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New(notFound))
		return
	}
	utils.RespondError(c, http.StatusInternalServerError, err)
}
