package services

import (
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-orders/models"
)

var hundred = decimal.NewFromInt(100)

// BillLine is one food item of a bill with its lines merged. Price is the
// snapshot of the first line; when later lines were sold at another price
// MixedPrices is set and Subtotal is no longer Quantity*Price.
type BillLine struct {
	FoodItemID   uint            `json:"food_item_id"`
	FoodItemName string          `json:"food_item"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	MixedPrices  bool            `json:"mixed_prices,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Bill struct {
	OrderID     uint            `json:"order_id"`
	Total       decimal.Decimal `json:"total_price"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Items       []BillLine      `json:"items"`
}

// ComputeBill groups lines by food item in first-seen order and applies the
// percentage discount to the total. Every line counts, cancelled ones too.
// FoodItem must be loaded on the details for names to appear.
func ComputeBill(orderID uint, discount float64, details []models.OrderDetail) Bill {
	bill := Bill{
		OrderID:  orderID,
		Total:    decimal.Zero,
		Discount: decimal.NewFromFloat(discount),
		Items:    make([]BillLine, 0),
	}

	index := make(map[uint]int)
	for _, d := range details {
		price := decimal.NewFromFloat(d.Price)
		amount := price.Mul(decimal.NewFromInt(int64(d.Quantity)))
		bill.Total = bill.Total.Add(amount)

		if i, ok := index[d.FoodItemID]; ok {
			bill.Items[i].Quantity += d.Quantity
			bill.Items[i].Subtotal = bill.Items[i].Subtotal.Add(amount)
			if !price.Equal(bill.Items[i].Price) {
				bill.Items[i].MixedPrices = true
			}
			continue
		}

		name := ""
		if d.FoodItem != nil {
			name = d.FoodItem.Name
		}
		index[d.FoodItemID] = len(bill.Items)
		bill.Items = append(bill.Items, BillLine{
			FoodItemID:   d.FoodItemID,
			FoodItemName: name,
			Quantity:     d.Quantity,
			Price:        price,
			Subtotal:     amount,
		})
	}

	bill.FinalAmount = bill.Total.Mul(hundred.Sub(bill.Discount)).Div(hundred).Round(2)
	return bill
}
