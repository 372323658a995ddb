package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type TableController struct {
	Sessions *services.SessionService
	Checkout *services.CheckoutService
}

func NewTableController(svc *services.Services) *TableController {
	return &TableController{Sessions: svc.Sessions, Checkout: svc.Checkout}
}

// GetAllTables -> semua meja aktif beserta sesi terakhir
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Sessions.ListTables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTable -> detail meja, sesi terakhir dan order
func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	table, err := tc.Sessions.GetTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// SetTableCount -> ubah jumlah meja (1..20)
func (tc *TableController) SetTableCount(c *gin.Context) {
	var req struct {
		Count int `json:"count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	tables, err := tc.Sessions.SetTableCount(c.Request.Context(), req.Count)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table count updated", tables)
}

// StartSession -> mulai sesi (open, hour, countdown)
func (tc *TableController) StartSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Mode     string `json:"mode"`
		Duration *int   `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Mode == "" {
		req.Mode = "open"
	}

	session, err := tc.Sessions.StartSession(c.Request.Context(), id, req.Mode, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session started", session)
}

// StopSession -> hentikan sesi yang berjalan
func (tc *TableController) StopSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	result, err := tc.Sessions.StopSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session stopped", result)
}

// ExtendSession -> tambah waktu countdown (detik)
func (tc *TableController) ExtendSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Duration int `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	ext, err := tc.Sessions.ExtendSession(c.Request.Context(), id, req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session extended", ext)
}

// ResetTable -> kembalikan meja ke available
func (tc *TableController) ResetTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := tc.Sessions.ResetTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table reset", gin.H{"table_id": id})
}

// GetTableTotal -> biaya waktu + produk saat ini
func (tc *TableController) GetTableTotal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	totals, err := tc.Checkout.ComputeTableTotal(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table total", totals)
}
