package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ingredient struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Unit      string          `gorm:"type:varchar(20)" json:"unit"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0;check:chk_ingredients_quantity,quantity >= 0" json:"quantity"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}
