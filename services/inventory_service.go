package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
)

const lowStockThreshold = 10

// InventoryService owns stock levels and the append-only inventory ledger.
type InventoryService struct {
	*base
}

// ComponentStock is the stock position of one combo component for a requested multiplier.
type ComponentStock struct {
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	RequiredQuantity  int    `json:"required_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	InStock           bool   `json:"in_stock"`
}

// ComboStockCheck answers whether a combo can be sold multiplier times.
type ComboStockCheck struct {
	ComboID         uint             `json:"combo_id"`
	Multiplier      int              `json:"multiplier"`
	CanSell         bool             `json:"can_sell"`
	StockCheck      []ComponentStock `json:"stock_check"`
	OutOfStockItems []ComponentStock `json:"out_of_stock_items"`
}

// Shortfalls converts the failing components into stock error details.
func (c *ComboStockCheck) Shortfalls() []Shortfall {
	out := make([]Shortfall, 0, len(c.OutOfStockItems))
	for _, item := range c.OutOfStockItems {
		out = append(out, Shortfall{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			RequiredQuantity:  item.RequiredQuantity,
			AvailableQuantity: item.AvailableQuantity,
		})
	}
	return out
}

// StockSummary is a product with its stock band.
type StockSummary struct {
	models.Product
	StockStatus string `json:"stock_status"`
}

// Adjust applies a signed stock delta. The result is floored at zero rather than rejected,
// while the ledger keeps the delta that was asked for.
func (s *InventoryService) Adjust(ctx context.Context, productID uint, delta int, changeType, reason string) (*models.Product, error) {
	if changeType == "" {
		changeType = models.ChangeAdjustment
	}
	switch changeType {
	case models.ChangeAdd, models.ChangeUpdate, models.ChangeSale, models.ChangeAdjustment:
	default:
		return nil, invalid("changeType", fmt.Sprintf("unknown change type %q", changeType))
	}

	unlock := s.locker.Lock(productKey(productID))
	defer unlock()

	var product *models.Product
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		if err := applyStockChange(tx, p, delta, changeType, reason, s.now()); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(EventInventoryChanged, map[string]interface{}{"product": product})
	return product, nil
}

// CheckComboStock reports, per component, whether multiplier units of the combo are in stock.
func (s *InventoryService) CheckComboStock(ctx context.Context, comboID uint, multiplier int) (*ComboStockCheck, error) {
	if multiplier < 1 {
		return nil, invalid("quantity", "must be at least 1")
	}
	combo, err := loadCombo(s.conn(ctx), comboID)
	if err != nil {
		return nil, err
	}
	return checkComboStock(combo, multiplier, nil), nil
}

// ListLedger returns ledger rows newest first, optionally for one product.
func (s *InventoryService) ListLedger(ctx context.Context, productID *uint) ([]models.InventoryEntry, error) {
	q := s.conn(ctx)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	var entries []models.InventoryEntry
	if err := q.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary lists every product with its stock band.
func (s *InventoryService) Summary(ctx context.Context) ([]StockSummary, error) {
	var products []models.Product
	if err := s.conn(ctx).Order("category, name").Find(&products).Error; err != nil {
		return nil, err
	}
	out := make([]StockSummary, 0, len(products))
	for _, p := range products {
		out = append(out, StockSummary{Product: p, StockStatus: stockStatus(p.Quantity)})
	}
	return out, nil
}

// ReplayQuantity rebuilds a stock level from ledger rows of a single product by applying
// each delta in order with the same zero floor Adjust uses.
func ReplayQuantity(entries []models.InventoryEntry) int {
	ordered := make([]models.InventoryEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	qty := 0
	for _, e := range ordered {
		qty += e.ChangeQuantity
		if qty < 0 {
			qty = 0
		}
	}
	return qty
}

func stockStatus(qty int) string {
	switch {
	case qty <= 0:
		return "out_of_stock"
	case qty <= lowStockThreshold:
		return "low_stock"
	}
	return "in_stock"
}

func lockProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := forUpdate(tx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product", productID)
		}
		return nil, err
	}
	return &product, nil
}

// lockProducts row-locks several products in ascending id order.
func lockProducts(tx *gorm.DB, ids []uint) (map[uint]*models.Product, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make(map[uint]*models.Product, len(sorted))
	for _, id := range sorted {
		if _, ok := out[id]; ok {
			continue
		}
		p, err := lockProduct(tx, id)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// applyStockChange writes the new quantity and appends the ledger row in the caller's tx.
func applyStockChange(tx *gorm.DB, product *models.Product, delta int, changeType, reason string, at time.Time) error {
	newQty := product.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Update("quantity", newQty).Error; err != nil {
		return fmt.Errorf("failed to update stock of product %d: %w", product.ID, err)
	}
	product.Quantity = newQty

	entry := models.InventoryEntry{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Price:          product.Price,
		Cost:           product.Cost,
		Category:       product.Category,
		ChangeType:     changeType,
		ChangeQuantity: delta,
		Quantity:       newQty,
		Reason:         reason,
		CreatedAt:      at,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write inventory ledger: %w", err)
	}
	return nil
}

func loadCombo(db *gorm.DB, comboID uint) (*models.ComboItem, error) {
	var combo models.ComboItem
	if err := db.Preload("Components").Preload("Components.Product").First(&combo, comboID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("combo item", comboID)
		}
		return nil, err
	}
	return &combo, nil
}

// checkComboStock evaluates a recipe. When locked is given the row-locked quantities are
// used instead of the preloaded ones.
func checkComboStock(combo *models.ComboItem, multiplier int, locked map[uint]*models.Product) *ComboStockCheck {
	check := &ComboStockCheck{
		ComboID:         combo.ID,
		Multiplier:      multiplier,
		CanSell:         true,
		StockCheck:      make([]ComponentStock, 0, len(combo.Components)),
		OutOfStockItems: []ComponentStock{},
	}
	for _, comp := range combo.Components {
		product := comp.Product
		if p, ok := locked[comp.ProductID]; ok {
			product = *p
		}
		name := product.Name
		if name == "" {
			name = fmt.Sprintf("product #%d", comp.ProductID)
		}
		required := comp.Quantity * multiplier
		line := ComponentStock{
			ProductID:         comp.ProductID,
			ProductName:       name,
			RequiredQuantity:  required,
			AvailableQuantity: product.Quantity,
			InStock:           product.Quantity >= required,
		}
		check.StockCheck = append(check.StockCheck, line)
		if !line.InStock {
			check.CanSell = false
			check.OutOfStockItems = append(check.OutOfStockItems, line)
		}
	}
	return check
}

func componentIDs(combo *models.ComboItem) []uint {
	ids := make([]uint, 0, len(combo.Components))
	for _, comp := range combo.Components {
		ids = append(ids, comp.ProductID)
	}
	return ids
}
