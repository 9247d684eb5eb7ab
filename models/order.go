package models

import (
	"fmt"
	"time"
)

type Order struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       *uint         `gorm:"index" json:"user_id,omitempty"`
	User         *User         `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`
	TableID      uint          `gorm:"not null;index" json:"table_id"`
	Table        *Table        `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	Discount     float64       `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
	Paid         bool          `gorm:"not null;default:false;index" json:"paid"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID" json:"order_details,omitempty"`
}

// Label dipakai di struk dan log
func (o *Order) Label() string {
	return fmt.Sprintf("ORD-%06d", o.ID)
}
