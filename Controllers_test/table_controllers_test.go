package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
)

func setupTableRouter(svc *services.Services) *gin.Engine {
	router := gin.New()
	tableCtrl := controllers.NewTableController(svc)
	router.GET("/tables", tableCtrl.GetAllTables)
	router.POST("/tables/count", tableCtrl.SetTableCount)
	router.GET("/tables/:id", tableCtrl.GetTable)
	router.GET("/tables/:id/total", tableCtrl.GetTableTotal)
	router.POST("/tables/:id/start", tableCtrl.StartSession)
	router.POST("/tables/:id/stop", tableCtrl.StopSession)
	router.POST("/tables/:id/extend", tableCtrl.ExtendSession)
	router.POST("/tables/:id/reset", tableCtrl.ResetTable)
	return router
}

func TestGetAllTables(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupTableRouter(svc)

	w, resp := performRequest(t, router, "GET", "/tables", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "List of tables", resp.Message)

	var tables []models.TableState
	decodeData(t, resp, &tables)
	assert.Len(t, tables, 4)
}

func TestStartSession_Lifecycle(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupTableRouter(svc)

	w, resp := performRequest(t, router, "POST", "/tables/1/start", gin.H{"mode": "countdown", "duration": 1800})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Session started", resp.Message)

	// meja sudah aktif
	w, resp = performRequest(t, router, "POST", "/tables/1/start", gin.H{"mode": "open"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Status)

	w, _ = performRequest(t, router, "POST", "/tables/1/extend", gin.H{"duration": 1800})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, resp = performRequest(t, router, "POST", "/tables/1/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var stop services.StopResult
	decodeData(t, resp, &stop)
	assert.Equal(t, models.TableStatusStopped, stop.Status)

	w, _ = performRequest(t, router, "POST", "/tables/1/stop", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, "POST", "/tables/1/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = performRequest(t, router, "GET", "/tables/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var table models.TableState
	decodeData(t, resp, &table)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestStartSession_BadRequests(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupTableRouter(svc)

	w, resp := performRequest(t, router, "POST", "/tables/1/start", gin.H{"mode": "countdown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "duration")

	w, _ = performRequest(t, router, "POST", "/tables/abc/start", gin.H{"mode": "open"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performRequest(t, router, "POST", "/tables/99/start", gin.H{"mode": "open"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// extend hanya untuk countdown
	performRequest(t, router, "POST", "/tables/2/start", gin.H{"mode": "open"})
	w, _ = performRequest(t, router, "POST", "/tables/2/extend", gin.H{"duration": 600})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetTableCount(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupTableRouter(svc)

	w, resp := performRequest(t, router, "POST", "/tables/count", gin.H{"count": 6})
	assert.Equal(t, http.StatusOK, w.Code)
	var tables []models.TableState
	decodeData(t, resp, &tables)
	assert.Len(t, tables, 6)

	w, _ = performRequest(t, router, "POST", "/tables/count", gin.H{"count": 25})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTableTotal(t *testing.T) {
	svc, _ := setupTestServices(t)
	router := setupTableRouter(svc)

	w, resp := performRequest(t, router, "GET", "/tables/3/total", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var totals services.Totals
	decodeData(t, resp, &totals)
	assert.Equal(t, 0.0, totals.Total)

	w, _ = performRequest(t, router, "GET", "/tables/42/total", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
