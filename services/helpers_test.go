package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
)

// setupTestDB membuka SQLite in-memory yang terpisah untuk setiap test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Notify(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	ledger  *InventoryLedger
	details *OrderDetailService
	orders  *OrderService
	events  *recorder
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	rec := &recorder{}
	ledger := NewInventoryLedger(db)
	return &fixture{
		db:      db,
		ledger:  ledger,
		details: NewOrderDetailService(db, ledger, rec),
		orders:  NewOrderService(db, rec),
		events:  rec,
	}
}

type recipeEntry struct {
	ingredient models.Ingredient
	perUnit    float64
}

func (f *fixture) ingredient(t *testing.T, name string, qty float64) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, Unit: "portion", Quantity: decimal.NewFromFloat(qty)}
	require.NoError(t, f.db.Create(&ing).Error)
	return ing
}

func (f *fixture) food(t *testing.T, name string, price float64, recipe ...recipeEntry) models.FoodItem {
	t.Helper()
	food := models.FoodItem{Name: name, Price: price}
	for _, r := range recipe {
		food.Ingredients = append(food.Ingredients, models.FoodItemIngredient{
			IngredientID: r.ingredient.ID,
			Quantity:     decimal.NewFromFloat(r.perUnit),
		})
	}
	require.NoError(t, f.db.Create(&food).Error)
	return food
}

func (f *fixture) table(t *testing.T, number string) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Status: models.TableStatusFree}
	require.NoError(t, f.db.Create(&table).Error)
	return table
}

func (f *fixture) openOrder(t *testing.T, table models.Table, discount float64) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), CreateOrderInput{TableID: table.ID, Discount: discount})
	require.NoError(t, err)
	return order
}

func (f *fixture) stock(t *testing.T, ing models.Ingredient) float64 {
	t.Helper()
	return f.exactStock(t, ing).InexactFloat64()
}

func (f *fixture) exactStock(t *testing.T, ing models.Ingredient) decimal.Decimal {
	t.Helper()
	var got models.Ingredient
	require.NoError(t, f.db.First(&got, ing.ID).Error)
	return got.Quantity
}

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// describeShortage renders a shortage as "name in_stock/required/short".
func describeShortage(s Shortage) string {
	return fmt.Sprintf("%s %s/%s/%s", s.Name, s.InStock, s.Required, s.Shortage)
}

func (f *fixture) tableStatus(t *testing.T, table models.Table) string {
	t.Helper()
	var got models.Table
	require.NoError(t, f.db.First(&got, table.ID).Error)
	return got.Status
}

func (f *fixture) setStatus(t *testing.T, detailID uint, status string) {
	t.Helper()
	_, err := f.details.SetStatus(context.Background(), detailID, status)
	require.NoError(t, err)
}
