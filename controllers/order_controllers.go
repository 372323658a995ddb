package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(svc *services.Services) *OrderController {
	return &OrderController{Orders: svc.Orders}
}

type createOrderRequest struct {
	TableID     *uint   `json:"tableId"`
	ProductID   *uint   `json:"productId"`
	ComboID     *uint   `json:"comboId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// item menerjemahkan productId/comboId menjadi satu ItemRef
func (r createOrderRequest) item() (models.ItemRef, error) {
	switch {
	case r.ProductID != nil && r.ComboID != nil:
		return models.ItemRef{}, errors.New("set either productId or comboId, not both")
	case r.ComboID != nil:
		return models.ComboRef(*r.ComboID), nil
	case r.ProductID != nil:
		return models.ProductRef(*r.ProductID), nil
	}
	return models.ItemRef{}, errors.New("productId or comboId is required")
}

// GetTableOrders -> order pending milik meja
func (oc *OrderController) GetTableOrders(c *gin.Context) {
	id, ok := paramID(c, "tableId")
	if !ok {
		return
	}
	oc.respondOrders(c, &id)
}

// GetStandaloneOrders -> order tanpa meja (counter)
func (oc *OrderController) GetStandaloneOrders(c *gin.Context) {
	oc.respondOrders(c, nil)
}

func (oc *OrderController) respondOrders(c *gin.Context, tableID *uint) {
	orders, err := oc.Orders.ListOrders(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> tambah item; item yang sama digabung
func (oc *OrderController) CreateOrder(c *gin.Context) {
	req := createOrderRequest{Quantity: 1}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := req.item()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), req.TableID, services.OrderRequest{
		Item:     item,
		Name:     req.ProductName,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// UpdateOrder -> ubah quantity; 0 menghapus order
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.ChangeOrderQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := oc.Orders.RemoveOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order removed", order)
}

func (oc *OrderController) ClearTableOrders(c *gin.Context) {
	id, ok := paramID(c, "tableId")
	if !ok {
		return
	}
	oc.clear(c, &id)
}

func (oc *OrderController) ClearStandaloneOrders(c *gin.Context) {
	oc.clear(c, nil)
}

func (oc *OrderController) clear(c *gin.Context, tableID *uint) {
	n, err := oc.Orders.ClearOrders(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders cleared", gin.H{"removed": n})
}
