package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/cache"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
)

const DefaultBillTTL = 5 * time.Minute

// BillService computes bills from stored lines, optionally caching them.
// Cached bills are keyed by a per-order version that every order event
// replaces, so a bill computed before an event is never served after it.
type BillService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewBillService creates the service; c may be nil to disable caching.
func NewBillService(db *gorm.DB, c cache.Cache, ttl time.Duration) *BillService {
	if ttl <= 0 {
		ttl = DefaultBillTTL
	}
	return &BillService{
		db:    db,
		cache: c,
		ttl:   ttl,
	}
}

// GetBill returns the bill of an order together with the order itself.
func (s *BillService) GetBill(ctx context.Context, orderID uint) (*Bill, *models.Order, error) {
	// Versi dibaca sebelum order dimuat
	version, cacheable := s.version(ctx, orderID)

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("OrderDetails", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("OrderDetails.FoodItem").
		First(&order, orderID).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil, notFound("order", orderID)
		}
		return nil, nil, fmt.Errorf("failed to load order: %w", err)
	}

	if !cacheable {
		bill := ComputeBill(order.ID, order.Discount, order.OrderDetails)
		return &bill, &order, nil
	}

	key := s.key(orderID, version)
	if bill, ok := s.cached(ctx, key, orderID); ok {
		return bill, &order, nil
	}

	bill := ComputeBill(order.ID, order.Discount, order.OrderDetails)
	s.store(ctx, key, &bill)
	return &bill, &order, nil
}

// Notify gives the order a fresh bill version, orphaning whatever was cached
// under the old one. The version outlives any bill cached under it.
func (s *BillService) Notify(ctx context.Context, evt events.Event) {
	if s.cache == nil || evt.OrderID == 0 {
		return
	}
	if err := s.cache.Set(ctx, s.versionKey(evt.OrderID), uuid.NewString(), 2*s.ttl); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"order_id": evt.OrderID,
			"event":    evt.Type,
		}).Errorf("Failed to invalidate cached bill: %v", err)
	}
}

// version returns the current bill version of an order. false means the
// cache is off or unreadable and the bill must not be cached.
func (s *BillService) version(ctx context.Context, orderID uint) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	raw, ok, err := s.cache.Get(ctx, s.versionKey(orderID))
	if err != nil {
		utils.ErrorLogger.Printf("Failed to read bill version for order %d: %v", orderID, err)
		return "", false
	}
	if !ok {
		return "0", true
	}
	return raw, true
}

func (s *BillService) cached(ctx context.Context, key string, orderID uint) (*Bill, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to read cached bill for order %d: %v", orderID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var bill Bill
	if err := json.Unmarshal([]byte(raw), &bill); err != nil {
		utils.ErrorLogger.Printf("Discarding corrupt cached bill for order %d: %v", orderID, err)
		return nil, false
	}
	return &bill, true
}

func (s *BillService) store(ctx context.Context, key string, bill *Bill) {
	raw, err := json.Marshal(bill)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to encode bill for order %d: %v", bill.OrderID, err)
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		utils.ErrorLogger.Printf("Failed to cache bill for order %d: %v", bill.OrderID, err)
	}
}

func (s *BillService) key(orderID uint, version string) string {
	return s.cache.GenerateKey("bill", strconv.FormatUint(uint64(orderID), 10)+":"+version)
}

func (s *BillService) versionKey(orderID uint) string {
	return s.cache.GenerateKey("bill-version", strconv.FormatUint(uint64(orderID), 10))
}
