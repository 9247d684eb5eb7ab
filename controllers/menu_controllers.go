package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
)

// MenuController mengelola food item beserta resepnya
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type recipeRequest struct {
	IngredientID uint            `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// buildRecipe memvalidasi bahan resep dan mengubahnya ke model
func buildRecipe(tx *gorm.DB, items []recipeRequest) ([]models.FoodItemIngredient, error) {
	seen := make(map[uint]bool, len(items))
	recipe := make([]models.FoodItemIngredient, 0, len(items))
	for _, item := range items {
		if !item.Quantity.Round(3).IsPositive() {
			return nil, fmt.Errorf("%w: ingredient %d needs a positive quantity", services.ErrInvalidInput, item.IngredientID)
		}
		if seen[item.IngredientID] {
			return nil, fmt.Errorf("%w: ingredient %d listed twice", services.ErrInvalidInput, item.IngredientID)
		}
		seen[item.IngredientID] = true

		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id = ?", item.IngredientID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("ingredient %d: %w", item.IngredientID, services.ErrNotFound)
		}
		recipe = append(recipe, models.FoodItemIngredient{
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity.Round(3),
		})
	}
	return recipe, nil
}

func (mc *MenuController) loadFoodItem(db *gorm.DB, id uint) (*models.FoodItem, error) {
	var food models.FoodItem
	err := db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Preload("Ingredients.Ingredient").First(&food, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food item %d: %w", id, services.ErrNotFound)
		}
		return nil, err
	}
	return &food, nil
}

// GetAllFoodItems
func (mc *MenuController) GetAllFoodItems(c *gin.Context) {
	var foods []models.FoodItem
	if err := mc.DB.Preload("Ingredients.Ingredient").Order("name").Find(&foods).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of food items", foods)
}

func (mc *MenuController) GetFoodItemByID(c *gin.Context) {
	foodID, ok := parseID(c, "food_id")
	if !ok {
		return
	}
	food, err := mc.loadFoodItem(mc.DB, foodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food item detail", food)
}

// CreateFoodItem -> menu baru dengan resep (bahan per porsi)
func (mc *MenuController) CreateFoodItem(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		Price       float64         `json:"price"`
		Ingredients []recipeRequest `json:"ingredients" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}

	food := models.FoodItem{Name: req.Name, Price: req.Price}
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		recipe, err := buildRecipe(tx, req.Ingredients)
		if err != nil {
			return err
		}
		food.Ingredients = recipe
		return tx.Create(&food).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	created, err := mc.loadFoodItem(mc.DB, food.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("New food item created: %s (price=%s)", created.Name, utils.FormatCurrencyVND(created.Price))
	utils.RespondJSON(c, http.StatusCreated, "Food item created", created)
}

// UpdateFoodItem -> ubah nama, harga atau ganti seluruh resep. Harga baru
// tidak mengubah baris order yang sudah ada.
func (mc *MenuController) UpdateFoodItem(c *gin.Context) {
	foodID, ok := parseID(c, "food_id")
	if !ok {
		return
	}
	var req struct {
		Name        *string          `json:"name"`
		Price       *float64         `json:"price"`
		Ingredients *[]recipeRequest `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price != nil && *req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}
	if req.Name != nil && *req.Name == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("name cannot be empty"))
		return
	}

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		food, err := mc.loadFoodItem(tx, foodID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.FoodItem{ID: food.ID}).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Ingredients != nil {
			recipe, err := buildRecipe(tx, *req.Ingredients)
			if err != nil {
				return err
			}
			if err := tx.Where("food_item_id = ?", food.ID).Delete(&models.FoodItemIngredient{}).Error; err != nil {
				return err
			}
			for i := range recipe {
				recipe[i].FoodItemID = food.ID
			}
			if len(recipe) > 0 {
				if err := tx.Create(&recipe).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	updated, err := mc.loadFoodItem(mc.DB, foodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food item updated", updated)
}
