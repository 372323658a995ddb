package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// CheckoutService settles a table or the standalone counter into one transaction.
type CheckoutService struct {
	*base
	settings *SettingsService
}

// Totals is what a checkout would charge right now.
type Totals struct {
	TableID     *uint   `json:"table_id"`
	SessionID   *uint   `json:"session_id,omitempty"`
	Mode        string  `json:"mode,omitempty"`
	TimeCost    float64 `json:"timeCost"`
	ProductCost float64 `json:"productCost"`
	Total       float64 `json:"total"`
	Breakdown   string  `json:"breakdown,omitempty"`
	OrderCount  int     `json:"order_count"`
}

// TransactionFilter narrows ListTransactions. Zero fields are ignored.
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// ComputeTableTotal prices the table's latest session and its pending orders.
func (s *CheckoutService) ComputeTableTotal(ctx context.Context, tableID uint) (*Totals, error) {
	rates, err := s.settings.Rates(ctx)
	if err != nil {
		return nil, err
	}
	db := s.conn(ctx)

	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table", tableID)
		}
		return nil, err
	}
	session, err := latestSession(db, tableID)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := scopeOrders(db, &tableID).Find(&orders).Error; err != nil {
		return nil, err
	}
	return s.totals(&table, session, orders, rates), nil
}

// ComputeStandaloneTotal sums the counter orders that belong to no table.
func (s *CheckoutService) ComputeStandaloneTotal(ctx context.Context) (*Totals, error) {
	var orders []models.Order
	if err := scopeOrders(s.conn(ctx), nil).Find(&orders).Error; err != nil {
		return nil, err
	}
	return s.totals(nil, nil, orders, Rates{}), nil
}

// totals only bills time for a table that has not been settled yet.
func (s *CheckoutService) totals(table *models.Table, session *models.Session, orders []models.Order, rates Rates) *Totals {
	t := &Totals{OrderCount: len(orders)}
	if table != nil {
		id := table.ID
		t.TableID = &id
	}

	billable := table != nil && session != nil &&
		table.Status != models.TableStatusAvailable && table.Status != models.TableStatusInactive
	if billable {
		now := s.now()
		sessionID := session.ID
		t.SessionID = &sessionID
		t.Mode = session.Mode
		t.TimeCost = SessionCost(session, now, rates)
		if session.Mode == models.ModeOpen {
			t.Breakdown = OpenTimeCost(ElapsedSeconds(session, now), rates).Breakdown
		}
	}

	var products float64
	for i := range orders {
		products += orders[i].Subtotal()
	}
	t.ProductCost = round2(products)
	t.Total = round2(t.TimeCost + t.ProductCost)
	return t
}

// Checkout records one transaction and returns the table to idle: any open session is
// closed, pending orders are removed and the status becomes available. With a nil table
// only the standalone orders are settled. Either everything is applied or nothing.
func (s *CheckoutService) Checkout(ctx context.Context, tableID *uint, method string, reference *string) (*models.Transaction, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = models.PaymentCash
	}
	if method != models.PaymentCash && method != models.PaymentGCash {
		return nil, invalid("paymentMethod", fmt.Sprintf("unsupported payment method %q", method))
	}
	if reference != nil {
		ref := strings.TrimSpace(*reference)
		reference = &ref
		if ref == "" {
			reference = nil
		}
	}
	if reference != nil && method != models.PaymentGCash {
		return nil, invalid("referenceNumber", "only accepted for gcash payments")
	}

	rates, err := s.settings.Rates(ctx)
	if err != nil {
		return nil, err
	}
	tableCount, err := s.settings.TableCount(ctx)
	if err != nil {
		return nil, err
	}

	keys := []string{orderScopeKey(tableID)}
	if tableID != nil {
		keys = append(keys, tableKey(*tableID))
	}
	unlock := s.locker.Lock(keys...)
	defer unlock()

	now := s.now()
	tx := s.conn(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var table *models.Table
	var session *models.Session
	if tableID != nil {
		if table, err = lockTable(tx, *tableID); err != nil {
			tx.Rollback()
			return nil, err
		}
		if session, err = latestSession(tx, *tableID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	orders, err := lockOrders(tx, tableID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	totals := s.totals(table, session, orders, rates)
	trx := models.Transaction{
		TableID:         tableID,
		SessionID:       totals.SessionID,
		ReceiptNumber:   fmt.Sprintf("TRX-%s-%s", now.Format("20060102"), uuid.New().String()),
		TotalAmount:     totals.Total,
		TimeCost:        totals.TimeCost,
		ProductCost:     totals.ProductCost,
		PaymentMethod:   method,
		ReferenceNumber: reference,
		CreatedAt:       now,
	}
	if err := tx.Create(&trx).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if tableID != nil {
		if err := tx.Model(&models.Session{}).
			Where("table_id = ? AND end_time IS NULL", *tableID).
			Update("end_time", now).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to close session: %w", err)
		}
		status := models.TableStatusAvailable
		if table.Status == models.TableStatusInactive || (tableCount > 0 && table.ID > uint(tableCount)) {
			status = models.TableStatusInactive
		}
		if err := tx.Model(&models.Table{}).Where("id = ?", *tableID).
			Updates(map[string]interface{}{"status": status, "updated_at": now}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to reset table: %w", err)
		}
	}

	if err := scopeOrders(tx, tableID).Delete(&models.Order{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear orders: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	utils.InfoLogger.Printf("Checkout %s: total %s (time %s, products %s) via %s",
		trx.ReceiptNumber, utils.FormatPeso(trx.TotalAmount), utils.FormatPeso(trx.TimeCost),
		utils.FormatPeso(trx.ProductCost), method)
	s.publish(EventTransactionCompleted, map[string]interface{}{
		"table_id":    tableID,
		"transaction": trx,
	})
	if tableID != nil {
		s.publish(EventTableUpdated, map[string]interface{}{"table_id": *tableID, "action": "checked_out"})
	}
	return &trx, nil
}

// ListTransactions returns transactions newest first.
func (s *CheckoutService) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	q := s.conn(ctx)
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	var trxs []models.Transaction
	if err := q.Order("created_at DESC, id DESC").Find(&trxs).Error; err != nil {
		return nil, err
	}
	return trxs, nil
}

func (s *CheckoutService) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.conn(ctx).First(&trx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("transaction", id)
		}
		return nil, err
	}
	return &trx, nil
}
