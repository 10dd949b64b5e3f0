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

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

// GetMenu -> public menu: categories by sort order with their available items by name
func (mcc *MenuCategoryController) GetMenu(c *gin.Context) {
	var categories []models.MenuCategory
	err := mcc.DB.WithContext(c.Request.Context()).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("name ASC")
		}).
		Order("sort_order ASC").Order("name ASC").
		Find(&categories).Error
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", categories)
}

type categoryInput struct {
	Name      string `json:"name"`
	SortOrder *int   `json:"sort_order"`
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body categoryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		utils.RespondErrorCode(c, http.StatusBadRequest, "missing_field", errors.New("category name is required"))
		return
	}

	category := models.MenuCategory{Name: body.Name}
	if body.SortOrder != nil {
		category.SortOrder = *body.SortOrder
	}
	if err := mcc.DB.Create(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body categoryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		category.Name = name
	}
	if body.SortOrder != nil {
		category.SortOrder = *body.SortOrder
	}
	if err := mcc.DB.Save(&category).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> removes the category and its items
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		respondServiceError(c, services.ErrNotFound)
		return
	}
	err := mcc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", category)
}
