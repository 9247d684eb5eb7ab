package models

import (
	"time"
)

// Status per baris pesanan
const (
	DetailStatusPreparing = "preparing"
	DetailStatusCooked    = "cooked"
	DetailStatusServed    = "served"
	DetailStatusCancelled = "cancelled"
)

// DetailStatuses lists every accepted line status.
var DetailStatuses = []string{
	DetailStatusPreparing,
	DetailStatusCooked,
	DetailStatusServed,
	DetailStatusCancelled,
}

func IsValidDetailStatus(status string) bool {
	for _, s := range DetailStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderDetail is one dish line of an order. Price is copied from the food
// item when the line is created and never changes afterwards.
type OrderDetail struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order      *Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FoodItemID uint      `gorm:"not null;index" json:"food_item_id"`
	FoodItem   *FoodItem `gorm:"foreignKey:FoodItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"food_item,omitempty"`
	Quantity   int       `gorm:"not null;check:chk_order_details_quantity,quantity >= 1" json:"quantity"`
	Price      float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Status     string    `gorm:"type:varchar(20);not null;default:'preparing';index" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
