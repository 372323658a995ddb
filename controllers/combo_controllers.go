package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type ComboController struct {
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
}

func NewComboController(svc *services.Services) *ComboController {
	return &ComboController{Catalog: svc.Catalog, Inventory: svc.Inventory}
}

// GetAllCombos -> combo aktif; ?all=true untuk semua
func (cc *ComboController) GetAllCombos(c *gin.Context) {
	combos, err := cc.Catalog.ListCombos(c.Request.Context(), c.Query("all") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of combo items", combos)
}

func (cc *ComboController) GetCombo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	combo, err := cc.Catalog.GetCombo(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Combo item detail", combo)
}

func (cc *ComboController) CreateCombo(c *gin.Context) {
	var req services.ComboInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	combo, err := cc.Catalog.CreateCombo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Combo item created successfully", combo)
}

func (cc *ComboController) UpdateCombo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.ComboInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	combo, err := cc.Catalog.UpdateCombo(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Combo item updated successfully", combo)
}

// DeleteCombo -> soft delete (is_active = false)
func (cc *ComboController) DeleteCombo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := cc.Catalog.DeleteCombo(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Combo item deleted successfully", gin.H{"id": id})
}

// CheckStock -> apakah combo bisa dijual sebanyak quantity
func (cc *ComboController) CheckStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	req := struct {
		Quantity int `json:"quantity"`
	}{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	check, err := cc.Inventory.CheckComboStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock check", check)
}
