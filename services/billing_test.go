package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
)

func TestComputeBillGroupsLines(t *testing.T) {
	pho := &models.FoodItem{ID: 1, Name: "Phở"}
	tea := &models.FoodItem{ID: 2, Name: "Trà đá"}
	details := []models.OrderDetail{
		{FoodItemID: 1, FoodItem: pho, Quantity: 2, Price: 50000, Status: models.DetailStatusServed},
		{FoodItemID: 2, FoodItem: tea, Quantity: 1, Price: 5000, Status: models.DetailStatusServed},
		{FoodItemID: 1, FoodItem: pho, Quantity: 1, Price: 50000, Status: models.DetailStatusServed},
	}

	bill := ComputeBill(7, 10, details)

	assert.Equal(t, uint(7), bill.OrderID)
	require.Len(t, bill.Items, 2)
	assert.Equal(t, "Phở", bill.Items[0].FoodItemName)
	assert.Equal(t, 3, bill.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(50000).Equal(bill.Items[0].Price))
	assert.True(t, decimal.NewFromInt(150000).Equal(bill.Items[0].Subtotal))
	assert.Equal(t, "Trà đá", bill.Items[1].FoodItemName)
	assert.True(t, decimal.NewFromInt(155000).Equal(bill.Total), "total %s", bill.Total)
	assert.True(t, decimal.NewFromInt(139500).Equal(bill.FinalAmount), "final %s", bill.FinalAmount)
}

func TestComputeBillDiscountExample(t *testing.T) {
	details := []models.OrderDetail{
		{FoodItemID: 1, Quantity: 2, Price: 50000},
		{FoodItemID: 1, Quantity: 1, Price: 50000},
	}

	bill := ComputeBill(1, 10, details)

	require.Len(t, bill.Items, 1)
	assert.Equal(t, 3, bill.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(150000).Equal(bill.Total))
	assert.True(t, decimal.NewFromInt(135000).Equal(bill.FinalAmount))
}

func TestComputeBillCountsCancelledLines(t *testing.T) {
	details := []models.OrderDetail{
		{FoodItemID: 1, Quantity: 1, Price: 30000, Status: models.DetailStatusCancelled},
		{FoodItemID: 2, Quantity: 2, Price: 12500, Status: models.DetailStatusPreparing},
	}

	bill := ComputeBill(1, 0, details)
	assert.True(t, decimal.NewFromInt(55000).Equal(bill.Total))
	assert.True(t, bill.Total.Equal(bill.FinalAmount))
}

func TestComputeBillMixedPriceSnapshots(t *testing.T) {
	details := []models.OrderDetail{
		{FoodItemID: 1, Quantity: 1, Price: 40000},
		{FoodItemID: 1, Quantity: 2, Price: 45000},
	}

	bill := ComputeBill(1, 0, details)
	require.Len(t, bill.Items, 1)
	// Harga yang ditampilkan dari baris pertama, subtotal tetap jumlah tiap baris
	assert.True(t, decimal.NewFromInt(40000).Equal(bill.Items[0].Price))
	assert.True(t, decimal.NewFromInt(130000).Equal(bill.Items[0].Subtotal))
	assert.True(t, bill.Items[0].Subtotal.Equal(bill.Total))
	assert.True(t, bill.Items[0].MixedPrices)

	same := ComputeBill(1, 0, []models.OrderDetail{
		{FoodItemID: 1, Quantity: 1, Price: 40000},
		{FoodItemID: 1, Quantity: 2, Price: 40000},
	})
	assert.False(t, same.Items[0].MixedPrices)
}

func TestComputeBillEmptyAndFullDiscount(t *testing.T) {
	empty := ComputeBill(1, 50, nil)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
	assert.True(t, empty.FinalAmount.IsZero())

	free := ComputeBill(1, 100, []models.OrderDetail{{FoodItemID: 1, Quantity: 1, Price: 99999}})
	assert.True(t, free.FinalAmount.IsZero())
}

func TestComputeBillRoundsFinalAmount(t *testing.T) {
	bill := ComputeBill(1, 33.33, []models.OrderDetail{{FoodItemID: 1, Quantity: 1, Price: 10}})
	assert.Equal(t, "6.67", bill.FinalAmount.StringFixed(2))
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	hits    map[string]int
	// beforeGet runs at the start of every Get, outside the lock.
	beforeGet func(key string)
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string), hits: make(map[string]int)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.beforeGet != nil {
		m.beforeGet(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if ok {
		m.hits[key]++
	}
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return strings.Join([]string{"test", operation, key}, ":")
}

// billKey is where the current bill of the order is cached.
func (m *memoryCache) billKey(orderID uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	version, ok := m.entries[fmt.Sprintf("test:bill-version:%d", orderID)]
	if !ok {
		version = "0"
	}
	return fmt.Sprintf("test:bill:%d:%s", orderID, version)
}

func TestBillServiceCachesAndInvalidates(t *testing.T) {
	f := newFixture(t)
	rice := f.ingredient(t, "Gạo", 10)
	com := f.food(t, "Cơm tấm", 40000, recipeEntry{rice, 1})
	order := f.openOrder(t, f.table(t, "A1"), 0)
	ctx := context.Background()

	mc := newMemoryCache()
	bills := NewBillService(f.db, mc, time.Minute)
	details := NewOrderDetailService(f.db, f.ledger, events.Multi{f.events, bills})

	_, err := details.AddLine(ctx, order.ID, com.ID, 1)
	require.NoError(t, err)

	bill, loaded, err := bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
	assert.True(t, decimal.NewFromInt(40000).Equal(bill.Total))
	first := mc.billKey(order.ID)
	assert.Contains(t, mc.entries, first)

	_, _, err = bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mc.hits[first])

	_, err = details.AddLine(ctx, order.ID, com.ID, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first, mc.billKey(order.ID))

	bill, _, err = bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120000).Equal(bill.Total))
	require.Len(t, bill.Items, 1)
	assert.Equal(t, 3, bill.Items[0].Quantity)
	assert.Equal(t, 1, mc.hits[first])
}

func TestBillServiceDoesNotServeBillReadBeforeChange(t *testing.T) {
	f := newFixture(t)
	rice := f.ingredient(t, "Gạo", 10)
	com := f.food(t, "Cơm tấm", 40000, recipeEntry{rice, 1})
	order := f.openOrder(t, f.table(t, "A1"), 0)
	ctx := context.Background()

	mc := newMemoryCache()
	bills := NewBillService(f.db, mc, time.Minute)
	details := NewOrderDetailService(f.db, f.ledger, bills)

	_, err := details.AddLine(ctx, order.ID, com.ID, 1)
	require.NoError(t, err)

	// Baris baru masuk setelah order dibaca, sebelum bill disimpan
	mc.beforeGet = func(key string) {
		if !strings.HasPrefix(key, "test:bill:") {
			return
		}
		mc.beforeGet = nil
		_, err := details.AddLine(ctx, order.ID, com.ID, 2)
		require.NoError(t, err)
	}

	bill, _, err := bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40000).Equal(bill.Total), "total %s", bill.Total)

	bill, _, err = bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120000).Equal(bill.Total), "total %s", bill.Total)
}

func TestBillServiceWithoutCache(t *testing.T) {
	f := newFixture(t)
	order := f.openOrder(t, f.table(t, "A1"), 20)
	bills := NewBillService(f.db, nil, 0)
	ctx := context.Background()

	bill, _, err := bills.GetBill(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, bill.Total.IsZero())
	assert.True(t, decimal.NewFromInt(20).Equal(bill.Discount))

	bills.Notify(ctx, events.New(events.OrderUpdated, order.ID, 0, nil))

	_, _, err = bills.GetBill(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
