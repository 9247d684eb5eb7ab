package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/receipts"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type ReceiptController struct {
	Bills *services.BillService
}

func NewReceiptController(bills *services.BillService) *ReceiptController {
	return &ReceiptController{Bills: bills}
}

// GenerateReceipt membuat struk tagihan order dalam PDF
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}

	bill, order, err := rc.Bills.GetBill(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := receipts.WriteBillPDF(&buf, *bill, order, now); err != nil {
		respondServiceError(c, err)
		return
	}

	number := receipts.Number(order, now)
	filename := strings.ReplaceAll(number, "/", "-") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())

	utils.InfoLogger.Printf("Receipt %s generated for order %d", number, order.ID)
}
