package receipts

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

const RestaurantName = "Restaurant"

// Number -> nomor struk, contoh RCP/20261015/000042
func Number(order *models.Order, at time.Time) string {
	return fmt.Sprintf("RCP/%s/%06d", at.Format("20060102"), order.ID)
}

// WriteBillPDF menulis struk tagihan order dalam format PDF ke w.
func WriteBillPDF(w io.Writer, bill services.Bill, order *models.Order, at time.Time) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(Number(order, at), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, RestaurantName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, Number(order, at), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, at.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")

	table := "-"
	if order.Table != nil {
		table = order.Table.TableNumber
	}
	pdf.Ln(3)
	pdf.CellFormat(64, 5, tr("Order: "+order.Label()), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Table: "+table), "", 1, "R", false, 0, "")
	if order.User != nil {
		pdf.CellFormat(0, 5, tr("Served by: "+order.User.Name), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(56, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(12, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range bill.Items {
		pdf.CellFormat(56, 6, tr(item.FoodItemName), "", 0, "L", false, 0, "")
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		price := utils.FormatCurrencyVND(item.Price.InexactFloat64())
		if item.MixedPrices {
			// harga berubah di tengah pesanan
			price += " *"
		}
		pdf.CellFormat(30, 6, price, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, utils.FormatCurrencyVND(item.Subtotal.InexactFloat64()), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	summary := []struct {
		label string
		value string
	}{
		{"Total", utils.FormatCurrencyVND(bill.Total.InexactFloat64())},
		{"Discount", bill.Discount.String() + "%"},
		{"Amount due", utils.FormatCurrencyVND(bill.FinalAmount.InexactFloat64())},
	}
	for i, row := range summary {
		if i == len(summary)-1 {
			pdf.SetFont("Helvetica", "B", 10)
		}
		pdf.CellFormat(98, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.value, "", 1, "R", false, 0, "")
	}

	status := "UNPAID"
	if order.Paid {
		status = "PAID"
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, status, "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	return pdf.Output(w)
}
