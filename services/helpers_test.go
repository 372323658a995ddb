package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/billiard-pos/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 18, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type publishedEvent struct {
	Event string
	Data  interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(event string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Event: event, Data: data})
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e.Event == event {
			total++
		}
	}
	return total
}

type testEnv struct {
	svc      *Services
	db       *gorm.DB
	clock    *fakeClock
	notifier *recordingNotifier
	ctx      context.Context
}

// newTestEnv opens a private in-memory sqlite database with four tables and the default rates.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Table{},
		&models.Session{},
		&models.TimeExtension{},
		&models.Product{},
		&models.ComboItem{},
		&models.ComboComponent{},
		&models.InventoryEntry{},
		&models.Order{},
		&models.Transaction{},
		&models.Setting{},
	))

	notifier := &recordingNotifier{}
	clock := newFakeClock()
	svc := NewServices(db, notifier)
	svc.SetClock(clock.Now)

	env := &testEnv{svc: svc, db: db, clock: clock, notifier: notifier, ctx: context.Background()}
	require.NoError(t, svc.Settings.Save(env.ctx, SettingsInput{HourlyRate: 150, HalfHourRate: 100, TableCount: 4}))
	return env
}

func (e *testEnv) product(t *testing.T, name string, price float64, qty int) *models.Product {
	t.Helper()
	p, err := e.svc.Catalog.CreateProduct(e.ctx, ProductInput{
		Name:     name,
		Price:    price,
		Cost:     price / 2,
		Quantity: &qty,
		Category: models.CategoryDrink,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) combo(t *testing.T, name string, price float64, parts ...ComponentInput) *models.ComboItem {
	t.Helper()
	c, err := e.svc.Catalog.CreateCombo(e.ctx, ComboInput{Name: name, Price: price, Components: parts})
	require.NoError(t, err)
	return c
}

func (e *testEnv) stock(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, productID).Error)
	return p.Quantity
}

func (e *testEnv) tableStatus(t *testing.T, tableID uint) string {
	t.Helper()
	var table models.Table
	require.NoError(t, e.db.First(&table, tableID).Error)
	return table.Status
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
