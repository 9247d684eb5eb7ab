package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/middlewares"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

// parseID membaca path param numerik; menulis 400 dan false jika tidak valid
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

// respondServiceError memetakan error dari services ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.RespondErrorData(c, http.StatusConflict, err, gin.H{"shortages": stockErr.Shortages})
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrOrderClosed),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrOrderNotServed):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString(middlewares.RequestIDKey),
			"path":       c.Request.URL.Path,
		}).Errorf("Unexpected error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
