package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FoodItem struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64              `gorm:"type:decimal(12,2);not null" json:"price"`
	Ingredients []FoodItemIngredient `gorm:"foreignKey:FoodItemID" json:"ingredients,omitempty"`
	CreatedAt   time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"not null" json:"updated_at"`
}

// FoodItemIngredient is one recipe entry: how much of an ingredient a single
// portion of the food item consumes. Recipe order follows ID.
type FoodItemIngredient struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	FoodItemID   uint            `gorm:"not null;uniqueIndex:idx_food_item_ingredient" json:"food_item_id"`
	IngredientID uint            `gorm:"not null;uniqueIndex:idx_food_item_ingredient" json:"ingredient_id"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"ingredient,omitempty"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
