package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/receipt"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type TransactionController struct {
	Transactions *services.CheckoutService
	Sessions     *services.SessionService
	VenueName    string
}

func NewTransactionController(svc *services.Services) *TransactionController {
	return &TransactionController{Transactions: svc.Checkout, Sessions: svc.Sessions}
}

// Checkout -> selesaikan meja (atau counter jika tableId kosong)
func (tc *TransactionController) Checkout(c *gin.Context) {
	var req struct {
		TableID         *uint   `json:"tableId"`
		PaymentMethod   string  `json:"paymentMethod"`
		ReferenceNumber *string `json:"referenceNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	trx, err := tc.Transactions.Checkout(c.Request.Context(), req.TableID, req.PaymentMethod, req.ReferenceNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Checkout completed", trx)
}

// GetTransactions -> semua transaksi, filter from/to opsional
func (tc *TransactionController) GetTransactions(c *gin.Context) {
	tc.list(c, "from", "to")
}

// GetTransactionsByRange -> transaksi antara start dan end (inklusif per tanggal)
func (tc *TransactionController) GetTransactionsByRange(c *gin.Context) {
	if c.Query("start") == "" || c.Query("end") == "" {
		utils.RespondJSON(c, http.StatusBadRequest, "start and end are required", nil)
		return
	}
	tc.list(c, "start", "end")
}

func (tc *TransactionController) list(c *gin.Context, fromKey, toKey string) {
	from, ok := queryDate(c, fromKey)
	if !ok {
		return
	}
	to, ok := queryDate(c, toKey)
	if !ok {
		return
	}
	trxs, err := tc.Transactions.ListTransactions(c.Request.Context(), services.TransactionFilter{
		From: from,
		To:   endOfDay(c.Query(toKey), to),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", trxs)
}

func (tc *TransactionController) GetTransaction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	trx, err := tc.Transactions.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction detail", trx)
}

// GetStandaloneTotal -> total order counter
func (tc *TransactionController) GetStandaloneTotal(c *gin.Context) {
	totals, err := tc.Transactions.ComputeStandaloneTotal(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Standalone total", totals)
}

// GetReceipt -> struk PDF untuk dicetak
func (tc *TransactionController) GetReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	trx, err := tc.Transactions.GetTransaction(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	r := receipt.Receipt{VenueName: tc.VenueName, Transaction: trx}
	if trx.TableID != nil {
		// meja bisa sudah dihapus, nama default dipakai
		if table, err := tc.Sessions.GetTable(ctx, *trx.TableID); err == nil {
			r.TableName = table.Name
		}
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, r); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", trx.ReceiptNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
