package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/billiard-pos/models"
)

// Services bundles the core services around one database handle, one lock table and
// one notifier, so that every service serializes on the same keys.
type Services struct {
	Settings  *SettingsService
	Sessions  *SessionService
	Inventory *InventoryService
	Catalog   *CatalogService
	Orders    *OrderService
	Checkout  *CheckoutService
	Reports   *ReportService
}

// NewServices membuat semua service inti
func NewServices(db *gorm.DB, notifier Notifier) *Services {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	b := &base{
		db:       db,
		locker:   NewKeyedLocker(),
		notifier: notifier,
		now:      time.Now,
	}

	sessions := &SessionService{base: b}
	settings := &SettingsService{base: b, tables: sessions}
	sessions.settings = settings
	inventory := &InventoryService{base: b}

	return &Services{
		Settings:  settings,
		Sessions:  sessions,
		Inventory: inventory,
		Catalog:   &CatalogService{base: b},
		Orders:    &OrderService{base: b},
		Checkout:  &CheckoutService{base: b, settings: settings},
		Reports:   &ReportService{base: b},
	}
}

// SetClock replaces the time source of every service.
func (s *Services) SetClock(now func() time.Time) {
	s.Sessions.base.now = now
}

type base struct {
	db       *gorm.DB
	locker   *KeyedLocker
	notifier Notifier
	now      func() time.Time
}

func (b *base) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

func (b *base) publish(event string, data interface{}) {
	b.notifier.Publish(event, data)
}

// forUpdate takes a row lock where the database supports it. SQLite ignores the clause
// and relies on the keyed locks alone.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockTable(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	if err := forUpdate(tx).First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table", tableID)
		}
		return nil, err
	}
	return &table, nil
}

// latestSession loads the newest session of a table with its extensions, or nil.
func latestSession(tx *gorm.DB, tableID uint) (*models.Session, error) {
	var sessions []models.Session
	if err := tx.Preload("TimeExtensions").
		Where("table_id = ?", tableID).
		Order("id DESC").
		Limit(1).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

func openSession(tx *gorm.DB, tableID uint) (*models.Session, error) {
	var sessions []models.Session
	if err := tx.Preload("TimeExtensions").
		Where("table_id = ? AND end_time IS NULL", tableID).
		Order("id DESC").
		Limit(1).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// scopeOrders narrows a query to one table's orders, or the standalone bucket.
func scopeOrders(tx *gorm.DB, tableID *uint) *gorm.DB {
	if tableID == nil {
		return tx.Where("table_id IS NULL")
	}
	return tx.Where("table_id = ?", *tableID)
}
