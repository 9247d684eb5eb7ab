package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderDetailService adds and removes dish lines on an order, keeping
// ingredient stock and line status consistent.
type OrderDetailService struct {
	db       *gorm.DB
	ledger   *InventoryLedger
	notifier events.Notifier
}

func NewOrderDetailService(db *gorm.DB, ledger *InventoryLedger, notifier events.Notifier) *OrderDetailService {
	if notifier == nil {
		notifier = events.Discard
	}
	return &OrderDetailService{
		db:       db,
		ledger:   ledger,
		notifier: notifier,
	}
}

// AddLine reserves the recipe of foodItemID times quantity and records a new
// preparing line priced at the food item's current price.
func (s *OrderDetailService) AddLine(ctx context.Context, orderID, foodItemID uint, quantity int) (*models.OrderDetail, error) {
	if quantity < 1 {
		return nil, invalidInput("quantity must be at least 1, got %d", quantity)
	}

	var (
		detail models.OrderDetail
		food   *models.FoodItem
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Paid {
			return fmt.Errorf("cannot add dishes to order %d: %w", order.ID, ErrOrderClosed)
		}

		food, err = loadFoodItem(tx, foodItemID)
		if err != nil {
			return err
		}

		if err := s.ledger.ReserveTx(tx, recipeLines(food, quantity)); err != nil {
			return err
		}

		detail = models.OrderDetail{
			OrderID:    order.ID,
			FoodItemID: food.ID,
			Quantity:   quantity,
			Price:      food.Price,
			Status:     models.DetailStatusPreparing,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return fmt.Errorf("failed to create order detail: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail.FoodItem = food
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  detail.OrderID,
		"detail_id": detail.ID,
		"food_item": food.Name,
		"quantity":  quantity,
	}).Info("Dish added to order")
	s.notifier.Notify(ctx, events.New(events.DetailAdded, detail.OrderID, 0, detail))
	s.notifier.Notify(ctx, events.New(events.StockUpdated, detail.OrderID, 0, recipeLines(food, quantity)))

	return &detail, nil
}

// RemoveLine deletes a line that is still preparing and gives its
// ingredients back to stock.
func (s *OrderDetailService) RemoveLine(ctx context.Context, detailID uint) error {
	var detail models.OrderDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&detail, detailID).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("order detail", detailID)
			}
			return fmt.Errorf("failed to load order detail: %w", err)
		}

		if detail.Status != models.DetailStatusPreparing {
			return fmt.Errorf("cannot remove line %d while it is %s: %w", detail.ID, detail.Status, ErrInvalidState)
		}

		food, err := loadFoodItem(tx, detail.FoodItemID)
		if err != nil {
			return err
		}

		if err := s.ledger.ReleaseTx(tx, recipeLines(food, detail.Quantity)); err != nil {
			return err
		}

		if err := tx.Delete(&detail).Error; err != nil {
			return fmt.Errorf("failed to delete order detail: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  detail.OrderID,
		"detail_id": detail.ID,
	}).Info("Dish removed from order")
	s.notifier.Notify(ctx, events.New(events.DetailRemoved, detail.OrderID, 0, detail))

	return nil
}

// SetStatus moves a line to any of the known statuses. No transition order
// is enforced.
func (s *OrderDetailService) SetStatus(ctx context.Context, detailID uint, status string) (*models.OrderDetail, error) {
	if !models.IsValidDetailStatus(status) {
		return nil, invalidInput("unknown status %q", status)
	}

	var detail models.OrderDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&detail, detailID).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("order detail", detailID)
			}
			return fmt.Errorf("failed to load order detail: %w", err)
		}

		if err := tx.Model(&detail).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		detail.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  detail.OrderID,
		"detail_id": detail.ID,
		"status":    status,
	}).Info("Order detail status changed")
	s.notifier.Notify(ctx, events.New(events.DetailStatusUpdate, detail.OrderID, 0, detail))

	return &detail, nil
}

// ListLines returns the lines of an order with their food items.
func (s *OrderDetailService) ListLines(ctx context.Context, orderID uint) ([]models.OrderDetail, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if count == 0 {
		return nil, notFound("order", orderID)
	}

	var details []models.OrderDetail
	if err := db.Preload("FoodItem").
		Where("order_id = ?", orderID).
		Order("id").
		Find(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to list order details: %w", err)
	}
	return details, nil
}

// recipeLines scales a recipe to the ordered quantity.
func recipeLines(food *models.FoodItem, quantity int) []StockLine {
	lines := make([]StockLine, 0, len(food.Ingredients))
	for _, ri := range food.Ingredients {
		lines = append(lines, StockLine{
			IngredientID: ri.IngredientID,
			Amount:       ri.Quantity.Mul(decimal.NewFromInt(int64(quantity))),
		})
	}
	return lines
}

func loadFoodItem(tx *gorm.DB, id uint) (*models.FoodItem, error) {
	var food models.FoodItem
	err := tx.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&food, id).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("food item", id)
		}
		return nil, fmt.Errorf("failed to load food item: %w", err)
	}
	return &food, nil
}

func lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("order", id)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}
