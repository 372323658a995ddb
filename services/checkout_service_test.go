package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
)

func TestComputeTableTotal_OpenSessionWithOrders(t *testing.T) {
	env := newTestEnv(t)
	cola := env.product(t, "Cola", 2.5, 10)

	_, err := env.svc.Sessions.StartSession(env.ctx, 1, models.ModeOpen, nil)
	require.NoError(t, err)
	_, err = env.svc.Orders.PlaceOrder(env.ctx, uintPtr(1), OrderRequest{Item: models.ProductRef(cola.ID), Quantity: 2})
	require.NoError(t, err)

	env.clock.Advance(45 * time.Minute)
	totals, err := env.svc.Checkout.ComputeTableTotal(env.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 150.0, totals.TimeCost)
	assert.Equal(t, 5.0, totals.ProductCost)
	assert.Equal(t, 155.0, totals.Total)
	assert.Equal(t, models.ModeOpen, totals.Mode)
	assert.Equal(t, "First hour ₱150", totals.Breakdown)
	assert.Equal(t, 1, totals.OrderCount)

	_, err = env.svc.Checkout.ComputeTableTotal(env.ctx, 99)
	assert.True(t, IsNotFound(err))
}

func TestCheckout_SettlesTableFromEveryBillableState(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		duration *int
		run      time.Duration
		stop     bool
		status   string
		timeCost float64
	}{
		{name: "occupied open", mode: models.ModeOpen, run: 45 * time.Minute, status: models.TableStatusOccupied, timeCost: 150},
		{name: "stopped open", mode: models.ModeOpen, run: 90 * time.Minute, stop: true, status: models.TableStatusStopped, timeCost: 250},
		{name: "needs checkout countdown", mode: models.ModeCountdown, duration: intPtr(3600), run: 70 * time.Minute, stop: true, status: models.TableStatusNeedsCheckout, timeCost: 150},
		{name: "stopped hour", mode: models.ModeHour, run: 30 * time.Minute, stop: true, status: models.TableStatusStopped, timeCost: 75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			cola := env.product(t, "Cola", 2.5, 10)

			_, err := env.svc.Sessions.StartSession(env.ctx, 1, tc.mode, tc.duration)
			require.NoError(t, err)
			_, err = env.svc.Orders.PlaceOrder(env.ctx, uintPtr(1), OrderRequest{Item: models.ProductRef(cola.ID), Quantity: 2})
			require.NoError(t, err)
			env.clock.Advance(tc.run)
			if tc.stop {
				_, err = env.svc.Sessions.StopSession(env.ctx, 1)
				require.NoError(t, err)
				// time after the stop is not billed
				env.clock.Advance(20 * time.Minute)
			}
			require.Equal(t, tc.status, env.tableStatus(t, 1))

			trx, err := env.svc.Checkout.Checkout(env.ctx, uintPtr(1), models.PaymentCash, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.timeCost, trx.TimeCost)
			assert.Equal(t, 5.0, trx.ProductCost)
			assert.Equal(t, tc.timeCost+5, trx.TotalAmount)
			assert.NotNil(t, trx.SessionID)
			assert.True(t, strings.HasPrefix(trx.ReceiptNumber, "TRX-20240501-"))

			assert.Equal(t, models.TableStatusAvailable, env.tableStatus(t, 1))
			orders, err := env.svc.Orders.ListOrders(env.ctx, uintPtr(1))
			require.NoError(t, err)
			assert.Empty(t, orders)

			var open int64
			require.NoError(t, env.db.Model(&models.Session{}).Where("table_id = ? AND end_time IS NULL", 1).Count(&open).Error)
			assert.Equal(t, int64(0), open)

			var count int64
			require.NoError(t, env.db.Model(&models.Transaction{}).Count(&count).Error)
			assert.Equal(t, int64(1), count)
			assert.Equal(t, 1, env.notifier.count(EventTransactionCompleted))

			// stock sold stays sold
			assert.Equal(t, 8, env.stock(t, cola.ID))
		})
	}
}

func TestCheckout_CountdownWithExtensionIsPricedAsOneGrant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Sessions.StartSession(env.ctx, 3, models.ModeCountdown, intPtr(3600))
	require.NoError(t, err)
	_, err = env.svc.Sessions.ExtendSession(env.ctx, 3, 1800)
	require.NoError(t, err)
	env.clock.Advance(100 * time.Minute)

	result, err := env.svc.Sessions.StopSession(env.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusNeedsCheckout, result.Status)

	trx, err := env.svc.Checkout.Checkout(env.ctx, uintPtr(3), models.PaymentGCash, nil)
	require.NoError(t, err)
	assert.Equal(t, 250.0, trx.TimeCost)
	assert.Equal(t, 250.0, trx.TotalAmount)
}

func TestCheckout_AvailableTableBillsOrdersOnly(t *testing.T) {
	env := newTestEnv(t)
	chips := env.product(t, "Chips", 3, 10)

	_, err := env.svc.Sessions.StartSession(env.ctx, 1, models.ModeOpen, nil)
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	_, err = env.svc.Checkout.Checkout(env.ctx, uintPtr(1), models.PaymentCash, nil)
	require.NoError(t, err)

	// a settled session must not be billed twice
	_, err = env.svc.Orders.PlaceOrder(env.ctx, uintPtr(1), OrderRequest{Item: models.ProductRef(chips.ID), Quantity: 1})
	require.NoError(t, err)
	trx, err := env.svc.Checkout.Checkout(env.ctx, uintPtr(1), models.PaymentCash, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, trx.TimeCost)
	assert.Equal(t, 3.0, trx.TotalAmount)
	assert.Nil(t, trx.SessionID)
}

func TestCheckout_StandaloneLeavesTableOrdersAlone(t *testing.T) {
	env := newTestEnv(t)
	cola := env.product(t, "Cola", 2.5, 10)

	_, err := env.svc.Orders.PlaceOrder(env.ctx, nil, OrderRequest{Item: models.ProductRef(cola.ID), Quantity: 3})
	require.NoError(t, err)
	_, err = env.svc.Orders.PlaceOrder(env.ctx, uintPtr(2), OrderRequest{Item: models.ProductRef(cola.ID), Quantity: 1})
	require.NoError(t, err)

	totals, err := env.svc.Checkout.ComputeStandaloneTotal(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.5, totals.Total)
	assert.Nil(t, totals.TableID)

	ref := "GC-123"
	trx, err := env.svc.Checkout.Checkout(env.ctx, nil, models.PaymentGCash, &ref)
	require.NoError(t, err)
	assert.Nil(t, trx.TableID)
	assert.Equal(t, 7.5, trx.TotalAmount)
	require.NotNil(t, trx.ReferenceNumber)
	assert.Equal(t, "GC-123", *trx.ReferenceNumber)

	standalone, err := env.svc.Orders.ListOrders(env.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, standalone)
	tableOrders, err := env.svc.Orders.ListOrders(env.ctx, uintPtr(2))
	require.NoError(t, err)
	assert.Len(t, tableOrders, 1)
	assert.Equal(t, 0, env.notifier.count(EventTableUpdated))
}

func TestCheckout_PaymentValidation(t *testing.T) {
	env := newTestEnv(t)

	ref := "GC-1"
	_, err := env.svc.Checkout.Checkout(env.ctx, nil, models.PaymentCash, &ref)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.Checkout.Checkout(env.ctx, nil, "card", nil)
	assert.ErrorIs(t, err, ErrValidation)

	blank := "   "
	trx, err := env.svc.Checkout.Checkout(env.ctx, nil, models.PaymentCash, &blank)
	require.NoError(t, err)
	assert.Nil(t, trx.ReferenceNumber)

	_, err = env.svc.Checkout.Checkout(env.ctx, uintPtr(99), models.PaymentCash, nil)
	assert.True(t, IsNotFound(err))

	var count int64
	require.NoError(t, env.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListTransactions_Window(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.svc.Checkout.Checkout(env.ctx, nil, models.PaymentCash, nil)
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)
	second, err := env.svc.Checkout.Checkout(env.ctx, nil, models.PaymentCash, nil)
	require.NoError(t, err)

	all, err := env.svc.Checkout.ListTransactions(env.ctx, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	from := first.CreatedAt
	to := from.Add(time.Hour)
	window, err := env.svc.Checkout.ListTransactions(env.ctx, TransactionFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, first.ID, window[0].ID)

	got, err := env.svc.Checkout.GetTransaction(env.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ReceiptNumber, got.ReceiptNumber)
	_, err = env.svc.Checkout.GetTransaction(env.ctx, 404)
	assert.True(t, IsNotFound(err))
}

func TestCheckout_FailedStepLeavesEverythingUntouched(t *testing.T) {
	env := newTestEnv(t)
	cola := env.product(t, "Cola", 2.5, 10)

	session, err := env.svc.Sessions.StartSession(env.ctx, 1, models.ModeOpen, nil)
	require.NoError(t, err)
	_, err = env.svc.Orders.PlaceOrder(env.ctx, uintPtr(1), OrderRequest{Item: models.ProductRef(cola.ID), Quantity: 2})
	require.NoError(t, err)
	env.clock.Advance(45 * time.Minute)

	require.NoError(t, env.db.Callback().Delete().Before("gorm:delete").Register("test:fail_orders_delete", func(db *gorm.DB) {
		if db.Statement.Table == "orders" {
			db.AddError(errors.New("disk full"))
		}
	}))

	_, err = env.svc.Checkout.Checkout(env.ctx, uintPtr(1), models.PaymentCash, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear orders")

	var trxCount int64
	require.NoError(t, env.db.Model(&models.Transaction{}).Count(&trxCount).Error)
	assert.Equal(t, int64(0), trxCount)

	var reloaded models.Session
	require.NoError(t, env.db.First(&reloaded, session.ID).Error)
	assert.Nil(t, reloaded.EndTime)
	assert.Equal(t, models.TableStatusOccupied, env.tableStatus(t, 1))

	orders, err := env.svc.Orders.ListOrders(env.ctx, uintPtr(1))
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 8, env.stock(t, cola.ID))
	assert.Equal(t, 0, env.notifier.count(EventTransactionCompleted))
}
