package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stockScale matches the decimal(12,3) quantity columns.
const stockScale = 3

// StockLine is an amount of one ingredient to reserve or release.
type StockLine struct {
	IngredientID uint            `json:"ingredient_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// InventoryLedger owns ingredient stock. Quantities only go down through
// Reserve, and a reservation either applies in full or not at all.
type InventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// Reserve decrements every line in its own transaction.
func (l *InventoryLedger) Reserve(ctx context.Context, lines []StockLine) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.ReserveTx(tx, lines)
	})
}

// Release increments every line in its own transaction.
func (l *InventoryLedger) Release(ctx context.Context, lines []StockLine) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.ReleaseTx(tx, lines)
	})
}

// ReserveTx checks and decrements all lines inside tx. When any ingredient
// is short nothing is written and an *InsufficientStockError listing every
// shortage is returned; the caller's transaction must then roll back.
func (l *InventoryLedger) ReserveTx(tx *gorm.DB, lines []StockLine) error {
	merged, err := mergeStockLines(lines)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}

	stock, err := lockIngredients(tx, merged)
	if err != nil {
		return err
	}

	// Cek semua bahan dulu, baru kurangi stok
	var shortages []Shortage
	for _, line := range merged {
		ing := stock[line.IngredientID]
		if ing.Quantity.LessThan(line.Amount) {
			shortages = append(shortages, newShortage(ing, line.Amount))
		}
	}
	if len(shortages) > 0 {
		return &InsufficientStockError{Shortages: shortages}
	}

	for _, line := range merged {
		ing := stock[line.IngredientID]
		ok, err := setQuantity(tx, ing, ing.Quantity.Sub(line.Amount))
		if err != nil {
			return fmt.Errorf("failed to reserve ingredient %d: %w", line.IngredientID, err)
		}
		if !ok {
			return &InsufficientStockError{Shortages: []Shortage{newShortage(ing, line.Amount)}}
		}
	}
	return nil
}

// ReleaseTx increments all lines inside tx.
func (l *InventoryLedger) ReleaseTx(tx *gorm.DB, lines []StockLine) error {
	merged, err := mergeStockLines(lines)
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		return nil
	}

	stock, err := lockIngredients(tx, merged)
	if err != nil {
		return err
	}

	for _, line := range merged {
		ing := stock[line.IngredientID]
		ok, err := setQuantity(tx, ing, ing.Quantity.Add(line.Amount))
		if err == nil && !ok {
			err = fmt.Errorf("%w: stock of ingredient %d changed during release", ErrInvalidState, ing.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to release ingredient %d: %w", line.IngredientID, err)
		}
	}
	return nil
}

// setQuantity writes the new stock computed from the locked row. The old
// quantity is part of the guard, so a row changed since it was read is left
// alone and reported as false. Quantities are computed here in decimal,
// never in SQL.
func setQuantity(tx *gorm.DB, ing models.Ingredient, quantity decimal.Decimal) (bool, error) {
	res := tx.Model(&models.Ingredient{}).
		Where("id = ? AND quantity = ?", ing.ID, ing.Quantity).
		UpdateColumn("quantity", quantity.Round(stockScale))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func newShortage(ing models.Ingredient, required decimal.Decimal) Shortage {
	return Shortage{
		IngredientID: ing.ID,
		Name:         ing.Name,
		InStock:      ing.Quantity,
		Required:     required,
		Shortage:     required.Sub(ing.Quantity),
	}
}

// Restock adds a delivery of one ingredient to the shelf.
func (l *InventoryLedger) Restock(ctx context.Context, ingredientID uint, amount decimal.Decimal) (*models.Ingredient, error) {
	amount = amount.Round(stockScale)
	if !amount.IsPositive() {
		return nil, invalidInput("restock amount must be positive, got %s", amount)
	}

	var ing models.Ingredient
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.ReleaseTx(tx, []StockLine{{IngredientID: ingredientID, Amount: amount}}); err != nil {
			return err
		}
		return tx.First(&ing, ingredientID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"ingredient_id": ing.ID,
		"amount":        amount.String(),
		"quantity":      ing.Quantity.String(),
	}).Info("Ingredient restocked")
	return &ing, nil
}

// mergeStockLines sums duplicate ingredients, keeping first-seen order.
// Amounts are rounded to the stock column scale.
func mergeStockLines(lines []StockLine) ([]StockLine, error) {
	index := make(map[uint]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, line := range lines {
		line.Amount = line.Amount.Round(stockScale)
		if line.Amount.IsNegative() {
			return nil, invalidInput("negative amount %s for ingredient %d", line.Amount, line.IngredientID)
		}
		if line.Amount.IsZero() {
			continue
		}
		if i, ok := index[line.IngredientID]; ok {
			merged[i].Amount = merged[i].Amount.Add(line.Amount)
			continue
		}
		index[line.IngredientID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// lockIngredients locks the rows in id order so that two reservations over
// overlapping ingredients cannot deadlock.
func lockIngredients(tx *gorm.DB, lines []StockLine) (map[uint]models.Ingredient, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	var rows []models.Ingredient
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to lock ingredients: %w", err)
	}

	stock := make(map[uint]models.Ingredient, len(rows))
	for _, row := range rows {
		stock[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := stock[id]; !ok {
			return nil, notFound("ingredient", id)
		}
	}
	return stock, nil
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
