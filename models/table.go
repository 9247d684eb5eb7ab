package models

import "time"

// Status meja
const (
	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"table_number"`
	Status      string    `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// IsOccupied reports whether an unpaid order currently holds the table.
func (t *Table) IsOccupied() bool {
	return t.Status == TableStatusOccupied
}
