package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type InventoryController struct {
	Inventory *services.InventoryService
}

func NewInventoryController(svc *services.Services) *InventoryController {
	return &InventoryController{Inventory: svc.Inventory}
}

// GetLedger -> riwayat perubahan stok, ?product_id= opsional
func (ic *InventoryController) GetLedger(c *gin.Context) {
	var productID *uint
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid product_id %q", raw))
			return
		}
		pid := uint(id)
		productID = &pid
	}
	ic.respondLedger(c, productID)
}

func (ic *InventoryController) GetProductLedger(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ic.respondLedger(c, &id)
}

func (ic *InventoryController) respondLedger(c *gin.Context, productID *uint) {
	entries, err := ic.Inventory.ListLedger(c.Request.Context(), productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory history", entries)
}

// GetSummary -> stok per produk dengan status out/low/in stock
func (ic *InventoryController) GetSummary(c *gin.Context) {
	summary, err := ic.Inventory.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory summary", summary)
}

// AdjustStock -> ubah stok dengan delta bertanda
func (ic *InventoryController) AdjustStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity   *int   `json:"quantity" binding:"required"`
		ChangeType string `json:"changeType"`
		Reason     string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := ic.Inventory.Adjust(c.Request.Context(), id, *req.Quantity, req.ChangeType, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory adjusted", product)
}
