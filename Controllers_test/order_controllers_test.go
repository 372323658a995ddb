package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
)

func setupOrderRouter(svc *services.Services) *gin.Engine {
	router := gin.New()
	orderCtrl := controllers.NewOrderController(svc)
	router.GET("/orders/table/:tableId", orderCtrl.GetTableOrders)
	router.GET("/orders/standalone", orderCtrl.GetStandaloneOrders)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.PUT("/orders/:id", orderCtrl.UpdateOrder)
	router.DELETE("/orders/:id", orderCtrl.DeleteOrder)
	router.DELETE("/orders/table/:tableId/clear", orderCtrl.ClearTableOrders)
	router.DELETE("/orders/standalone/clear", orderCtrl.ClearStandaloneOrders)
	return router
}

func TestCreateOrder_MergesRepeatedItem(t *testing.T) {
	svc, db := setupTestServices(t)
	router := setupOrderRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 10)

	for i := 0; i < 2; i++ {
		w, resp := performRequest(t, router, "POST", "/orders", gin.H{"tableId": 1, "productId": cola.ID, "quantity": 2})
		require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	}

	w, resp := performRequest(t, router, "GET", "/orders/table/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	decodeData(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, 4, orders[0].Quantity)
	assert.Equal(t, "Cola", orders[0].ProductName)

	var product models.Product
	db.First(&product, cola.ID)
	assert.Equal(t, 6, product.Quantity)
}

func TestCreateOrder_InsufficientStockReportsShortfalls(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupOrderRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 1)

	w, resp := performRequest(t, router, "POST", "/orders", gin.H{"productId": cola.ID, "quantity": 3})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Status)

	var data struct {
		Shortfalls []services.Shortfall `json:"shortfalls"`
	}
	decodeData(t, resp, &data)
	require.Len(t, data.Shortfalls, 1)
	assert.Equal(t, 3, data.Shortfalls[0].RequiredQuantity)
	assert.Equal(t, 1, data.Shortfalls[0].AvailableQuantity)
}

func TestCreateOrder_BadRequests(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupOrderRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 10)

	w, _ := performRequest(t, router, "POST", "/orders", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, "POST", "/orders", gin.H{"productId": cola.ID, "comboId": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, "POST", "/orders", gin.H{"productId": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = performRequest(t, router, "POST", "/orders", gin.H{"productId": cola.ID, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrder_ZeroQuantityRemovesLine(t *testing.T) {
	svc, db := setupTestServices(t)
	router := setupOrderRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 10)

	_, resp := performRequest(t, router, "POST", "/orders", gin.H{"productId": cola.ID, "quantity": 3})
	var order models.Order
	decodeData(t, resp, &order)

	w, resp := performRequest(t, router, "PUT", fmt.Sprintf("/orders/%d", order.ID), gin.H{"quantity": 5})
	assert.Equal(t, http.StatusOK, w.Code, resp.Message)

	w, _ = performRequest(t, router, "PUT", fmt.Sprintf("/orders/%d", order.ID), gin.H{"quantity": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = performRequest(t, router, "GET", "/orders/standalone", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	decodeData(t, resp, &orders)
	assert.Empty(t, orders)

	var product models.Product
	db.First(&product, cola.ID)
	assert.Equal(t, 10, product.Quantity)

	w, _ = performRequest(t, router, "DELETE", fmt.Sprintf("/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearTableOrders(t *testing.T) {
	svc, db := setupTestServices(t)
	router := setupOrderRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 10)
	chips := createProduct(t, svc, "Chips", 3, 10)

	performRequest(t, router, "POST", "/orders", gin.H{"tableId": 2, "productId": cola.ID, "quantity": 2})
	performRequest(t, router, "POST", "/orders", gin.H{"tableId": 2, "productId": chips.ID, "quantity": 1})

	w, resp := performRequest(t, router, "DELETE", "/orders/table/2/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Removed int `json:"removed"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, 2, data.Removed)

	var product models.Product
	db.First(&product, cola.ID)
	assert.Equal(t, 10, product.Quantity)
}
