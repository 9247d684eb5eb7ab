package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTableOccupied     = errors.New("table is occupied")
	ErrOrderClosed       = errors.New("order is already paid")
	ErrInvalidState      = errors.New("invalid state")
	ErrOrderNotServed    = errors.New("order has dishes that are not served yet")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Shortage describes one ingredient that cannot cover a reservation.
type Shortage struct {
	IngredientID uint            `json:"ingredient_id"`
	Name         string          `json:"name"`
	InStock      decimal.Decimal `json:"in_stock"`
	Required     decimal.Decimal `json:"required"`
	Shortage     decimal.Decimal `json:"shortage"`
}

// InsufficientStockError carries every shortage found by a reservation,
// not only the first one.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: in stock %s, required %s, short %s",
			s.Name, s.InStock, s.Required, s.Shortage))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock, strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
