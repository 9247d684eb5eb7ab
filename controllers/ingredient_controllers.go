package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
)

type IngredientController struct {
	DB       *gorm.DB
	Ledger   *services.InventoryLedger
	Notifier events.Notifier
}

func NewIngredientController(db *gorm.DB, ledger *services.InventoryLedger, notifier events.Notifier) *IngredientController {
	if notifier == nil {
		notifier = events.Discard
	}
	return &IngredientController{DB: db, Ledger: ledger, Notifier: notifier}
}

func (ic *IngredientController) GetAllIngredients(c *gin.Context) {
	var ingredients []models.Ingredient
	if err := ic.DB.Order("name").Find(&ingredients).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of ingredients", ingredients)
}

// CreateIngredient -> bahan baru dengan stok awal
func (ic *IngredientController) CreateIngredient(c *gin.Context) {
	var req struct {
		Name     string          `json:"name" binding:"required"`
		Unit     string          `json:"unit" binding:"required"`
		Quantity decimal.Decimal `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity cannot be negative"))
		return
	}

	var existing int64
	if err := ic.DB.Model(&models.Ingredient{}).Where("name = ?", req.Name).Count(&existing).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("ingredient %s already exists", req.Name))
		return
	}

	ingredient := models.Ingredient{Name: req.Name, Unit: req.Unit, Quantity: req.Quantity.Round(3)}
	if err := ic.DB.Create(&ingredient).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("New ingredient created: %s (%s %s)", ingredient.Name, ingredient.Quantity, ingredient.Unit)
	utils.RespondJSON(c, http.StatusCreated, "Ingredient created", ingredient)
}

// Restock -> tambah stok bahan dari pembelian
func (ic *IngredientController) Restock(c *gin.Context) {
	ingredientID, ok := parseID(c, "ingredient_id")
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ingredient, err := ic.Ledger.Restock(c.Request.Context(), ingredientID, req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ic.Notifier.Notify(c.Request.Context(), events.New(events.StockUpdated, 0, 0, []services.StockLine{
		{IngredientID: ingredient.ID, Amount: req.Amount.Round(3)},
	}))
	utils.RespondJSON(c, http.StatusOK, "Ingredient restocked", ingredient)
}
