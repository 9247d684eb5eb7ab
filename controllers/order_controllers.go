package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Bills  *services.BillService
}

func NewOrderController(orders *services.OrderService, bills *services.BillService) *OrderController {
	return &OrderController{Orders: orders, Bills: bills}
}

// GetAllOrders -> list order terbaru, ?paid=true|false&page=&per_page=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var filter services.ListOrdersFilter

	if raw := c.Query("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid paid filter %q", raw))
			return
		}
		filter.Paid = &paid
	}
	for key, dst := range map[string]*int{"page": &filter.Page, "per_page": &filter.PerPage} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", key, raw))
			return
		}
		*dst = n
	}

	orders, total, err := oc.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = services.DefaultPerPage
	}
	if perPage > services.MaxPerPage {
		perPage = services.MaxPerPage
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", gin.H{
		"orders":   orders,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// CreateOrder -> buka order baru di meja kosong
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		UserID   *uint   `json:"user_id"`
		TableID  uint    `json:"table_id" binding:"required"`
		Discount float64 `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:   req.UserID,
		TableID:  req.TableID,
		Discount: req.Discount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail order beserta baris pesanan
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder -> ubah user, meja, diskon dan status bayar. Field paid yang
// tidak dikirim berarti belum dibayar.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		UserID    *uint    `json:"user_id"`
		ClearUser bool     `json:"clear_user"`
		TableID   *uint    `json:"table_id"`
		Discount  *float64 `json:"discount"`
		Paid      bool     `json:"paid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateOrder(c.Request.Context(), orderID, services.UpdateOrderInput{
		UserID:    req.UserID,
		ClearUser: req.ClearUser,
		TableID:   req.TableID,
		Discount:  req.Discount,
		Paid:      req.Paid,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// SetPaid -> tandai order lunas (atau buka kembali)
func (oc *OrderController) SetPaid(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Paid *bool `json:"paid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.SetPaid(c.Request.Context(), orderID, *req.Paid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	msg := "Order reopened"
	if order.Paid {
		msg = "Order paid"
	}
	utils.RespondJSON(c, http.StatusOK, msg, order)
}

// DeleteOrder -> hapus order beserta baris pesanannya
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	if err := oc.Orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"id": orderID})
}

// GetBill -> tagihan order, item dikelompokkan per menu
func (oc *OrderController) GetBill(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	bill, _, err := oc.Bills.GetBill(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order bill", bill)
}
