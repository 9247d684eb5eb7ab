package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-orders/controllers"
	"github.com/yeremiapane/restaurant-orders/database"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	orders *services.OrderService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	ledger := services.NewInventoryLedger(db)
	orders := services.NewOrderService(db, nil)
	details := services.NewOrderDetailService(db, ledger, nil)

	r := gin.New()
	orderCtrl := controllers.NewOrderController(orders, services.NewBillService(db, nil, 0))
	detailCtrl := controllers.NewOrderDetailController(details)
	tableCtrl := controllers.NewTableController(db, nil)
	menuCtrl := controllers.NewMenuController(db)
	ingredientCtrl := controllers.NewIngredientController(db, ledger, nil)
	userCtrl := controllers.NewUserController(db)

	r.GET("/orders", orderCtrl.GetAllOrders)
	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	r.PUT("/orders/:order_id/paid", orderCtrl.SetPaid)
	r.POST("/orders/:order_id/details", detailCtrl.AddLine)
	r.DELETE("/order-details/:detail_id", detailCtrl.RemoveLine)
	r.PATCH("/order-details/:detail_id/status", detailCtrl.UpdateStatus)
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables", tableCtrl.CreateTable)
	r.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	r.POST("/food-items", menuCtrl.CreateFoodItem)
	r.PATCH("/food-items/:food_id", menuCtrl.UpdateFoodItem)
	r.POST("/ingredients", ingredientCtrl.CreateIngredient)
	r.POST("/ingredients/:ingredient_id/restock", ingredientCtrl.Restock)
	r.POST("/users", userCtrl.CreateUser)
	r.GET("/users", userCtrl.GetAllUsers)

	return &testEnv{db: db, router: r, orders: orders}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (e *testEnv) seedTable(t *testing.T, number string) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Status: models.TableStatusFree}
	require.NoError(t, e.db.Create(&table).Error)
	return table
}

func TestInvalidPathID(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Status)

	code, _ = env.do(t, http.MethodGet, "/orders/0", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderErrorMapping(t *testing.T) {
	env := setupTestEnv(t)
	table := env.seedTable(t, "B1")

	code, _ := env.do(t, http.MethodGet, "/orders/42", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodPost, "/orders", gin.H{"table_id": table.ID, "discount": 150})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/orders", gin.H{"discount": 5})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := env.do(t, http.MethodPost, "/orders", gin.H{"table_id": table.ID})
	require.Equal(t, http.StatusCreated, code)
	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))

	code, _ = env.do(t, http.MethodPost, "/orders", gin.H{"table_id": table.ID})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPut, fmt.Sprintf("/orders/%d/paid", order.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d", order.ID), gin.H{"discount": 12.5})
	assert.Equal(t, http.StatusOK, code)
}

func TestOrderDetailEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	table := env.seedTable(t, "B1")
	rice := models.Ingredient{Name: "Gạo", Unit: "kg", Quantity: decimal.NewFromInt(1)}
	require.NoError(t, env.db.Create(&rice).Error)
	food := models.FoodItem{Name: "Cơm", Price: 30000, Ingredients: []models.FoodItemIngredient{{IngredientID: rice.ID, Quantity: decimal.NewFromInt(1)}}}
	require.NoError(t, env.db.Create(&food).Error)
	order, err := env.orders.CreateOrder(context.Background(), services.CreateOrderInput{TableID: table.ID})
	require.NoError(t, err)

	path := fmt.Sprintf("/orders/%d/details", order.ID)
	code, resp := env.do(t, http.MethodPost, path, gin.H{"food_item_id": food.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, code)
	var detail models.OrderDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Equal(t, models.DetailStatusPreparing, detail.Status)

	code, resp = env.do(t, http.MethodPost, path, gin.H{"food_item_id": food.ID, "quantity": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, string(resp.Data), "shortages")

	code, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/order-details/%d/status", detail.ID), gin.H{"status": "eaten"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/order-details/%d/status", detail.ID), gin.H{"status": "cooked"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/order-details/%d", detail.ID), nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPut, fmt.Sprintf("/orders/%d/paid", order.ID), gin.H{"paid": true})
	assert.Equal(t, http.StatusConflict, code)
}

func TestTableEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/tables", gin.H{"table_number": "C1"})
	require.Equal(t, http.StatusCreated, code)
	var table models.Table
	require.NoError(t, json.Unmarshal(resp.Data, &table))
	assert.Equal(t, models.TableStatusFree, table.Status)

	code, _ = env.do(t, http.MethodPost, "/tables", gin.H{"table_number": "C1"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodGet, "/tables?status=dirty", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	_, err := env.orders.CreateOrder(context.Background(), services.CreateOrderInput{TableID: table.ID})
	require.NoError(t, err)

	code, resp = env.do(t, http.MethodGet, "/tables?status=occupied", nil)
	require.Equal(t, http.StatusOK, code)
	var occupied []models.Table
	require.NoError(t, json.Unmarshal(resp.Data, &occupied))
	assert.Len(t, occupied, 1)

	code, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/tables/%d", table.ID), nil)
	assert.Equal(t, http.StatusConflict, code)

	empty := env.seedTable(t, "C2")
	code, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/tables/%d", empty.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/tables/%d", empty.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFoodItemAndIngredientEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/ingredients", gin.H{"name": "Trứng", "unit": "pcs", "quantity": 12})
	require.Equal(t, http.StatusCreated, code)
	var egg models.Ingredient
	require.NoError(t, json.Unmarshal(resp.Data, &egg))

	code, _ = env.do(t, http.MethodPost, "/ingredients", gin.H{"name": "Trứng", "unit": "pcs"})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPost, "/food-items", gin.H{
		"name":        "Bánh mì",
		"price":       25000,
		"ingredients": []gin.H{{"ingredient_id": 999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = env.do(t, http.MethodPost, "/food-items", gin.H{
		"name":        "Bánh mì",
		"price":       25000,
		"ingredients": []gin.H{{"ingredient_id": egg.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, code)
	var food models.FoodItem
	require.NoError(t, json.Unmarshal(resp.Data, &food))
	require.Len(t, food.Ingredients, 1)

	code, resp = env.do(t, http.MethodPatch, fmt.Sprintf("/food-items/%d", food.ID), gin.H{
		"price":       27000,
		"ingredients": []gin.H{{"ingredient_id": egg.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, code)
	var updated models.FoodItem
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, 27000.0, updated.Price)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "2", updated.Ingredients[0].Quantity.String())

	code, _ = env.do(t, http.MethodPost, fmt.Sprintf("/ingredients/%d/restock", egg.ID), gin.H{"amount": -3})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do(t, http.MethodPost, fmt.Sprintf("/ingredients/%d/restock", egg.ID), gin.H{"amount": 6})
	require.Equal(t, http.StatusOK, code)
	var restocked models.Ingredient
	require.NoError(t, json.Unmarshal(resp.Data, &restocked))
	assert.Equal(t, "18", restocked.Quantity.String())

	code, resp = env.do(t, http.MethodPost, fmt.Sprintf("/ingredients/%d/restock", egg.ID), gin.H{"amount": "0.25"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &restocked))
	assert.Equal(t, "18.25", restocked.Quantity.String())

	code, _ = env.do(t, http.MethodPost, "/ingredients/999/restock", gin.H{"amount": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/users", gin.H{"name": "Hoa"})
	require.Equal(t, http.StatusCreated, code)
	var user models.User
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, "user", user.Role)

	code, _ = env.do(t, http.MethodPost, "/users", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, code)
	var users []models.User
	require.NoError(t, json.Unmarshal(resp.Data, &users))
	assert.Len(t, users, 1)
}

func TestListOrdersQueryValidation(t *testing.T) {
	env := setupTestEnv(t)

	code, _ := env.do(t, http.MethodGet, "/orders?paid=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodGet, "/orders?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := env.do(t, http.MethodGet, "/orders?per_page=500", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		PerPage int `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, services.MaxPerPage, page.PerPage)
}
