package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/controllers"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/middlewares"
	"github.com/yeremiapane/restaurant-orders/services"
	"gorm.io/gorm"
)

// Deps berisi semua yang dibutuhkan handler
type Deps struct {
	DB       *gorm.DB
	Ledger   *services.InventoryLedger
	Orders   *services.OrderService
	Details  *services.OrderDetailService
	Bills    *services.BillService
	Hub      *kds.Hub
	Notifier events.Notifier

	CORSOrigin  string
	RateLimiter *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.RateLimit())
	}

	// Inisialisasi controller
	orderCtrl := controllers.NewOrderController(d.Orders, d.Bills)
	detailCtrl := controllers.NewOrderDetailController(d.Details)
	receiptCtrl := controllers.NewReceiptController(d.Bills)
	tableCtrl := controllers.NewTableController(d.DB, d.Notifier)
	menuCtrl := controllers.NewMenuController(d.DB)
	ingredientCtrl := controllers.NewIngredientController(d.DB, d.Ledger, d.Notifier)
	userCtrl := controllers.NewUserController(d.DB)

	r.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Endpoint KDS WebSocket
	if d.Hub != nil {
		r.GET("/ws", controllers.NewKDSController(d.Hub).Handle)
	}

	orders := r.Group("/orders")
	{
		orders.GET("", orderCtrl.GetAllOrders)
		orders.POST("", orderCtrl.CreateOrder)
		orders.GET("/:order_id", orderCtrl.GetOrderByID)
		orders.PATCH("/:order_id", orderCtrl.UpdateOrder)
		orders.PUT("/:order_id/paid", orderCtrl.SetPaid)
		orders.DELETE("/:order_id", orderCtrl.DeleteOrder)
		orders.GET("/:order_id/bill", orderCtrl.GetBill)
		orders.GET("/:order_id/receipt", receiptCtrl.GenerateReceipt)
		orders.GET("/:order_id/details", detailCtrl.ListLines)
		orders.POST("/:order_id/details", detailCtrl.AddLine)
	}

	details := r.Group("/order-details")
	{
		details.DELETE("/:detail_id", detailCtrl.RemoveLine)
		details.PATCH("/:detail_id/status", detailCtrl.UpdateStatus)
	}

	tables := r.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.POST("", tableCtrl.CreateTable)
		tables.GET("/:table_id", tableCtrl.GetTableByID)
		tables.DELETE("/:table_id", tableCtrl.DeleteTable)
	}

	foods := r.Group("/food-items")
	{
		foods.GET("", menuCtrl.GetAllFoodItems)
		foods.POST("", menuCtrl.CreateFoodItem)
		foods.GET("/:food_id", menuCtrl.GetFoodItemByID)
		foods.PATCH("/:food_id", menuCtrl.UpdateFoodItem)
	}

	ingredients := r.Group("/ingredients")
	{
		ingredients.GET("", ingredientCtrl.GetAllIngredients)
		ingredients.POST("", ingredientCtrl.CreateIngredient)
		ingredients.POST("/:ingredient_id/restock", ingredientCtrl.Restock)
	}

	users := r.Group("/users")
	{
		users.GET("", userCtrl.GetAllUsers)
		users.POST("", userCtrl.CreateUser)
	}

	return r
}
