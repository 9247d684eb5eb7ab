package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type OrderDetailController struct {
	Details *services.OrderDetailService
}

func NewOrderDetailController(details *services.OrderDetailService) *OrderDetailController {
	return &OrderDetailController{Details: details}
}

// AddLine -> tambah menu ke order, stok bahan langsung dipotong
func (dc *OrderDetailController) AddLine(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		FoodItemID uint `json:"food_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	detail, err := dc.Details.AddLine(c.Request.Context(), orderID, req.FoodItemID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Dish added to order", detail)
}

func (dc *OrderDetailController) ListLines(c *gin.Context) {
	orderID, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	lines, err := dc.Details.ListLines(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", lines)
}

// RemoveLine -> hanya untuk baris yang masih preparing
func (dc *OrderDetailController) RemoveLine(c *gin.Context) {
	detailID, ok := parseID(c, "detail_id")
	if !ok {
		return
	}
	if err := dc.Details.RemoveLine(c.Request.Context(), detailID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish removed from order", gin.H{"id": detailID})
}

// UpdateStatus -> dipakai dapur dan pelayan (preparing, cooked, served, cancelled)
func (dc *OrderDetailController) UpdateStatus(c *gin.Context) {
	detailID, ok := parseID(c, "detail_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	detail, err := dc.Details.SetStatus(c.Request.Context(), detailID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish status updated", detail)
}
