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

func setupComboRouter(svc *services.Services) *gin.Engine {
	router := gin.New()
	comboCtrl := controllers.NewComboController(svc)
	router.GET("/combo-items", comboCtrl.GetAllCombos)
	router.GET("/combo-items/:id", comboCtrl.GetCombo)
	router.POST("/combo-items", comboCtrl.CreateCombo)
	router.PUT("/combo-items/:id", comboCtrl.UpdateCombo)
	router.DELETE("/combo-items/:id", comboCtrl.DeleteCombo)
	router.POST("/combo-items/:id/check-stock", comboCtrl.CheckStock)
	return router
}

func TestComboItems_CreateAndCheckStock(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupComboRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 5)
	chips := createProduct(t, svc, "Chips", 3, 1)

	w, resp := performRequest(t, router, "POST", "/combo-items", gin.H{
		"name":  "Snack Pack",
		"price": 5,
		"components": []gin.H{
			{"product_id": cola.ID, "quantity": 2},
			{"product_id": chips.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	var combo models.ComboItem
	decodeData(t, resp, &combo)
	assert.Len(t, combo.Components, 2)

	// tanpa body -> quantity 1
	w, resp = performRequest(t, router, "POST", fmt.Sprintf("/combo-items/%d/check-stock", combo.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var check services.ComboStockCheck
	decodeData(t, resp, &check)
	assert.True(t, check.CanSell)

	w, resp = performRequest(t, router, "POST", fmt.Sprintf("/combo-items/%d/check-stock", combo.ID), gin.H{"quantity": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &check)
	assert.False(t, check.CanSell)
	require.Len(t, check.OutOfStockItems, 1)
	assert.Equal(t, chips.ID, check.OutOfStockItems[0].ProductID)

	w, _ = performRequest(t, router, "POST", "/combo-items/99/check-stock", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComboItems_DuplicateComponentAndSoftDelete(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupComboRouter(svc)
	cola := createProduct(t, svc, "Cola", 2.5, 5)

	w, _ := performRequest(t, router, "POST", "/combo-items", gin.H{
		"name":  "Double",
		"price": 5,
		"components": []gin.H{
			{"product_id": cola.ID, "quantity": 1},
			{"product_id": cola.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	_, resp := performRequest(t, router, "POST", "/combo-items", gin.H{
		"name":       "Cola Pair",
		"price":      4.5,
		"components": []gin.H{{"product_id": cola.ID, "quantity": 2}},
	})
	var combo models.ComboItem
	decodeData(t, resp, &combo)

	w, _ = performRequest(t, router, "DELETE", fmt.Sprintf("/combo-items/%d", combo.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, resp = performRequest(t, router, "GET", "/combo-items", nil)
	var combos []models.ComboItem
	decodeData(t, resp, &combos)
	assert.Empty(t, combos)

	_, resp = performRequest(t, router, "GET", "/combo-items?all=true", nil)
	decodeData(t, resp, &combos)
	require.Len(t, combos, 1)
	assert.False(t, combos[0].IsActive)
}
