package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type MenuItemController struct {
	DB *gorm.DB
}

func NewMenuItemController(db *gorm.DB) *MenuItemController {
	return &MenuItemController{DB: db}
}

type menuItemInput struct {
	CategoryID  uint     `json:"category_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DishType    string   `json:"dish_type"`
	Price       *float64 `json:"price"`
	Weight      *int     `json:"weight"`
	Volume      *int     `json:"volume"`
	Ingredients string   `json:"ingredients"`
	IsAvailable *bool    `json:"is_available"`
}

// apply copies the non-empty fields of in onto item and validates the result.
func (in menuItemInput) apply(db *gorm.DB, item *models.MenuItem) error {
	if in.CategoryID != 0 {
		var n int64
		if err := db.Model(&models.MenuCategory{}).Where("id = ?", in.CategoryID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return &services.ValidationError{Kind: services.ErrNotFound, Field: "category_id", Message: "category not found"}
		}
		item.CategoryID = in.CategoryID
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		item.Name = name
	}
	if in.Description != "" {
		item.Description = strings.TrimSpace(in.Description)
	}
	if in.DishType != "" {
		item.DishType = in.DishType
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Weight != nil {
		item.Weight = in.Weight
	}
	if in.Volume != nil {
		item.Volume = in.Volume
	}
	if in.Ingredients != "" {
		item.Ingredients = strings.TrimSpace(in.Ingredients)
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	switch {
	case item.CategoryID == 0:
		return &services.ValidationError{Kind: services.ErrMissingField, Field: "category_id", Message: "category is required"}
	case item.Name == "":
		return &services.ValidationError{Kind: services.ErrMissingField, Field: "name", Message: "name is required"}
	case !models.ValidDishType(item.DishType):
		return &services.ValidationError{Kind: services.ErrInvalidField, Field: "dish_type", Message: "dish type must be food or drink"}
	case item.Price < 0:
		return &services.ValidationError{Kind: services.ErrInvalidField, Field: "price", Message: "price must not be negative"}
	}
	return nil
}

func (mic *MenuItemController) CreateItem(c *gin.Context) {
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.Price == nil {
		utils.RespondErrorCode(c, http.StatusBadRequest, "missing_field", errors.New("price is required"))
		return
	}

	item := models.MenuItem{DishType: models.DishFood, IsAvailable: true}
	if err := in.apply(mic.DB, &item); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := mic.DB.Create(&item).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	// gorm skips false for a column with a default on insert
	if in.IsAvailable != nil && !*in.IsAvailable {
		if err := mic.DB.Model(&item).Update("is_available", false).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		item.IsAvailable = false
	}
	utils.InfoLogger.Printf("Menu item %s created in category %d", item.Name, item.CategoryID)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mic *MenuItemController) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	var item models.MenuItem
	if err := mic.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	if err := in.apply(mic.DB, &item); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := mic.DB.Save(&item).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mic *MenuItemController) DeleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var item models.MenuItem
	if err := mic.DB.First(&item, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	if err := mic.DB.Delete(&item).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", item)
}
