package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type CreateOrderInput struct {
	UserID   *uint
	TableID  uint
	Discount float64
}

// UpdateOrderInput holds the editable order fields. Nil pointers keep the
// current value; Paid is always applied.
type UpdateOrderInput struct {
	UserID    *uint
	ClearUser bool
	TableID   *uint
	Discount  *float64
	Paid      bool
}

type ListOrdersFilter struct {
	Paid    *bool
	Page    int
	PerPage int
}

// OrderService owns the order lifecycle and keeps table occupancy in step
// with it: a table is occupied exactly while an unpaid order sits on it.
type OrderService struct {
	db       *gorm.DB
	notifier events.Notifier
}

func NewOrderService(db *gorm.DB, notifier events.Notifier) *OrderService {
	if notifier == nil {
		notifier = events.Discard
	}
	return &OrderService{
		db:       db,
		notifier: notifier,
	}
}

// CreateOrder opens an unpaid order on a free table and marks the table
// occupied.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateDiscount(in.Discount); err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:   in.UserID,
		TableID:  in.TableID,
		Discount: in.Discount,
		Paid:     false,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.UserID != nil {
			if err := ensureUser(tx, *in.UserID); err != nil {
				return err
			}
		}
		if err := occupyTable(tx, in.TableID); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
		"discount": order.Discount,
	}).Info("Order created")
	s.notifier.Notify(ctx, events.New(events.OrderCreated, order.ID, order.TableID, order))
	s.notifyTable(ctx, order.TableID, models.TableStatusOccupied)

	return s.GetOrder(ctx, order.ID)
}

// UpdateOrder applies field changes and the requested paid flag. Paying an
// order whose lines are not all served fails without touching anything.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uint, in UpdateOrderInput) (*models.Order, error) {
	return s.update(ctx, orderID, in)
}

// SetPaid is the paid path of UpdateOrder on its own.
func (s *OrderService) SetPaid(ctx context.Context, orderID uint, paid bool) (*models.Order, error) {
	return s.update(ctx, orderID, UpdateOrderInput{Paid: paid})
}

func (s *OrderService) update(ctx context.Context, orderID uint, in UpdateOrderInput) (*models.Order, error) {
	if in.Discount != nil {
		if err := validateDiscount(*in.Discount); err != nil {
			return nil, err
		}
	}

	var (
		wasPaid  bool
		freed    uint
		occupied uint
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		wasPaid = order.Paid

		if in.Paid {
			served, err := allServed(tx, order.ID)
			if err != nil {
				return err
			}
			if !served {
				return fmt.Errorf("order %d: %w", order.ID, ErrOrderNotServed)
			}
		}

		updates := map[string]interface{}{"paid": in.Paid}
		if in.UserID != nil {
			if err := ensureUser(tx, *in.UserID); err != nil {
				return err
			}
			updates["user_id"] = *in.UserID
		} else if in.ClearUser {
			updates["user_id"] = nil
		}
		if in.Discount != nil {
			updates["discount"] = *in.Discount
		}

		newTableID := order.TableID
		if in.TableID != nil && *in.TableID != order.TableID {
			newTableID = *in.TableID
			if err := ensureTable(tx, newTableID); err != nil {
				return err
			}
			updates["table_id"] = newTableID
		}

		// Meja yang ditempati sebelum dan sesudah perubahan
		var before, after uint
		if !order.Paid {
			before = order.TableID
		}
		if !in.Paid {
			after = newTableID
		}
		if before != after {
			if before != 0 {
				if err := freeTable(tx, before); err != nil {
					return err
				}
				freed = before
			}
			if after != 0 {
				if err := occupyTable(tx, after); err != nil {
					return err
				}
				occupied = after
			}
		}

		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	evtType := events.OrderUpdated
	if !wasPaid && order.Paid {
		evtType = events.OrderPaid
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
		"paid":     order.Paid,
	}).Info("Order updated")
	s.notifier.Notify(ctx, events.New(evtType, order.ID, order.TableID, order))
	if freed != 0 {
		s.notifyTable(ctx, freed, models.TableStatusFree)
	}
	if occupied != 0 {
		s.notifyTable(ctx, occupied, models.TableStatusOccupied)
	}

	return order, nil
}

// DeleteOrder removes the order and its lines. The table is freed only when
// the order was unpaid: a paid order already gave its table back, and the
// table may now belong to the next guest's order. Ingredients already
// consumed by the lines are written off, not restocked.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderDetail{}).Error; err != nil {
			return fmt.Errorf("failed to delete order details: %w", err)
		}
		if err := tx.Delete(order).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		if !order.Paid {
			if err := freeTable(tx, order.TableID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
	}).Info("Order deleted")
	s.notifier.Notify(ctx, events.New(events.OrderDeleted, order.ID, order.TableID, nil))
	if !order.Paid {
		s.notifyTable(ctx, order.TableID, models.TableStatusFree)
	}
	return nil
}

// GetOrder -> detail 1 order beserta meja, user dan baris pesanan
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("User").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("OrderDetails.FoodItem").
		First(&order, orderID).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("order", orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// ListOrders returns newest orders first, one page at a time, with the
// total number of matching orders.
func (s *OrderService) ListOrders(ctx context.Context, f ListOrdersFilter) ([]models.Order, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Paid != nil {
		query = query.Where("paid = ?", *f.Paid)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	if err := query.Preload("Table").
		Preload("User").
		Order("created_at desc, id desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *OrderService) notifyTable(ctx context.Context, tableID uint, status string) {
	s.notifier.Notify(ctx, events.New(events.TableUpdated, 0, tableID, map[string]interface{}{
		"table_id": tableID,
		"status":   status,
	}))
}

// allServed is true when no line of the order has a status other than
// served. Cancelled and preparing lines both count as not served.
func allServed(tx *gorm.DB, orderID uint) (bool, error) {
	var pending int64
	if err := tx.Model(&models.OrderDetail{}).
		Where("order_id = ? AND status <> ?", orderID, models.DetailStatusServed).
		Count(&pending).Error; err != nil {
		return false, fmt.Errorf("failed to check served dishes: %w", err)
	}
	return pending == 0, nil
}

func occupyTable(tx *gorm.DB, tableID uint) error {
	var table models.Table
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, tableID).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("table", tableID)
		}
		return fmt.Errorf("failed to load table: %w", err)
	}
	if table.IsOccupied() {
		return fmt.Errorf("table %s: %w", table.TableNumber, ErrTableOccupied)
	}

	res := tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableStatusFree).
		Update("status", models.TableStatusOccupied)
	if res.Error != nil {
		return fmt.Errorf("failed to occupy table: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("table %s: %w", table.TableNumber, ErrTableOccupied)
	}
	return nil
}

func freeTable(tx *gorm.DB, tableID uint) error {
	if err := tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("status", models.TableStatusFree).Error; err != nil {
		return fmt.Errorf("failed to free table: %w", err)
	}
	return nil
}

func ensureTable(tx *gorm.DB, tableID uint) error {
	var count int64
	if err := tx.Model(&models.Table{}).Where("id = ?", tableID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up table: %w", err)
	}
	if count == 0 {
		return notFound("table", tableID)
	}
	return nil
}

func ensureUser(tx *gorm.DB, userID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count == 0 {
		return notFound("user", userID)
	}
	return nil
}

func validateDiscount(discount float64) error {
	if discount < 0 || discount > 100 {
		return invalidInput("discount must be between 0 and 100, got %g", discount)
	}
	return nil
}
