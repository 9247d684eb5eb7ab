package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB       *gorm.DB
	Notifier events.Notifier
}

func NewTableController(db *gorm.DB, notifier events.Notifier) *TableController {
	if notifier == nil {
		notifier = events.Discard
	}
	return &TableController{DB: db, Notifier: notifier}
}

// CreateTable -> menambahkan meja baru, selalu mulai dari status free
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	if err := tc.DB.Model(&models.Table{}).Where("table_number = ?", req.TableNumber).Count(&existing).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("table %s already exists", req.TableNumber))
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Status:      models.TableStatusFree,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Notifier.Notify(c.Request.Context(), events.New(events.TableUpdated, 0, table.ID, table))
	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> seluruh meja, bisa difilter ?status=free|occupied
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Order("table_number")
	if status := c.Query("status"); status != "" {
		if status != models.TableStatusFree && status != models.TableStatusOccupied {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown table status %q", status))
			return
		}
		query = query.Where("status = ?", status)
	}

	var tables []models.Table
	if err := query.Find(&tables).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("table %d: %w", tableID, services.ErrNotFound))
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// DeleteTable -> hanya meja kosong yang tidak punya riwayat order
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d: %w", tableID, services.ErrNotFound)
			}
			return err
		}
		if table.IsOccupied() {
			return fmt.Errorf("table %s: %w", table.TableNumber, services.ErrTableOccupied)
		}

		var orders int64
		if err := tx.Model(&models.Order{}).Where("table_id = ?", table.ID).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return fmt.Errorf("table %s still has %d orders: %w", table.TableNumber, orders, services.ErrInvalidState)
		}
		return tx.Delete(&table).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Notifier.Notify(c.Request.Context(), events.New(events.TableUpdated, 0, tableID, gin.H{
		"table_id": tableID,
		"deleted":  true,
	}))
	utils.InfoLogger.Printf("Table %d deleted", tableID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}
