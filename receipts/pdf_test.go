package receipts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
)

func TestNumber(t *testing.T) {
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "RCP/20261015/000042", Number(&models.Order{ID: 42}, at))
}

func TestWriteBillPDF(t *testing.T) {
	order := &models.Order{
		ID:    3,
		Paid:  true,
		Table: &models.Table{TableNumber: "A1"},
		User:  &models.User{Name: "Lan"},
	}
	details := []models.OrderDetail{
		{FoodItemID: 1, FoodItem: &models.FoodItem{Name: "Pho bo"}, Quantity: 2, Price: 50000},
		{FoodItemID: 2, FoodItem: &models.FoodItem{Name: "Tra da"}, Quantity: 1, Price: 5000},
	}
	bill := services.ComputeBill(order.ID, 10, details)

	var buf bytes.Buffer
	require.NoError(t, WriteBillPDF(&buf, bill, order, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteBillPDFWithoutRelations(t *testing.T) {
	order := &models.Order{ID: 9}
	var buf bytes.Buffer
	require.NoError(t, WriteBillPDF(&buf, services.ComputeBill(order.ID, 0, nil), order, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
