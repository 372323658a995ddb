package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// errLockSetStale signals that the orders seen before locking no longer match the
// orders found under lock, so the lock set has to be rebuilt.
var errLockSetStale = errors.New("order lock set is stale")

const clearRetries = 3

// OrderService keeps the pending line items of every table and of the standalone
// counter, moving stock with every change.
type OrderService struct {
	*base
}

// OrderRequest adds Quantity units of Item. Name and Price default to the catalog
// values when left empty.
type OrderRequest struct {
	Item     models.ItemRef `json:"item"`
	Name     string         `json:"name"`
	Price    float64        `json:"price"`
	Quantity int            `json:"quantity"`
}

func (r *OrderRequest) validate() error {
	switch r.Item.Kind {
	case models.ItemProduct, models.ItemCombo:
	default:
		return invalid("item", "either a product or a combo is required")
	}
	if r.Item.ID == 0 {
		return invalid("item", "id is required")
	}
	if r.Quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if r.Price < 0 {
		return invalid("price", "must not be negative")
	}
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

// stockScope is everything an order operation holds while it moves stock.
type stockScope struct {
	combos   map[uint]*models.ComboItem
	products map[uint]bool
	unlock   func()
}

// ListOrders returns the pending orders of a table, or of the standalone bucket when tableID is nil.
func (s *OrderService) ListOrders(ctx context.Context, tableID *uint) ([]models.Order, error) {
	var orders []models.Order
	if err := scopeOrders(s.conn(ctx), tableID).Order("created_at, id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// PlaceOrder deducts stock for the item and then adds it to the order list, merging into
// an existing line for the same item. Nothing changes when any stock check fails.
func (s *OrderService) PlaceOrder(ctx context.Context, tableID *uint, req OrderRequest) (*models.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	scope, err := s.acquire(ctx, tableID, []models.ItemRef{req.Item})
	if err != nil {
		return nil, err
	}
	defer scope.unlock()

	var order models.Order
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if tableID != nil {
			var table models.Table
			if err := tx.First(&table, *tableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("table", *tableID)
				}
				return err
			}
			if table.Status == models.TableStatusInactive {
				return fmt.Errorf("%w: table %d is inactive", ErrInvalidState, *tableID)
			}
		}

		locked, err := lockProducts(tx, scope.productIDs([]models.ItemRef{req.Item}))
		if err != nil {
			return err
		}

		name, price := req.Name, req.Price
		switch req.Item.Kind {
		case models.ItemCombo:
			combo := scope.combos[req.Item.ID]
			if !combo.IsActive {
				return fmt.Errorf("%w: combo %q is not available", ErrInvalidState, combo.Name)
			}
			if name == "" {
				name = combo.Name
			}
			if price == 0 {
				price = combo.Price
			}
		default:
			p := locked[req.Item.ID]
			if name == "" {
				name = p.Name
			}
			if price == 0 {
				price = p.Price
			}
		}

		if shortfalls := scope.shortfalls(req.Item, req.Quantity, locked); len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}
		if err := scope.move(tx, req.Item, -req.Quantity, locked, "sold: "+name, s.now()); err != nil {
			return err
		}

		existing, err := findOrderLine(tx, tableID, req.Item)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += req.Quantity
			if err := tx.Model(&models.Order{}).Where("id = ?", existing.ID).
				Updates(map[string]interface{}{"quantity": existing.Quantity, "updated_at": s.now()}).Error; err != nil {
				return fmt.Errorf("failed to update order: %w", err)
			}
			order = *existing
			return nil
		}

		order = models.Order{
			TableID:     tableID,
			ProductName: name,
			Price:       round2(price),
			Quantity:    req.Quantity,
		}
		order.SetItem(req.Item)
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrder(tableID, "placed", &order)
	return &order, nil
}

// ChangeOrderQuantity sets a new quantity on an order line. Only the increase is checked
// against stock; a decrease restores stock; zero removes the line.
func (s *OrderService) ChangeOrderQuantity(ctx context.Context, orderID uint, quantity int) (*models.Order, error) {
	if quantity < 0 {
		return nil, invalid("quantity", "must not be negative")
	}
	if quantity == 0 {
		return s.RemoveOrder(ctx, orderID)
	}

	current, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := current.Item()

	scope, err := s.acquire(ctx, current.TableID, []models.ItemRef{item})
	if err != nil {
		return nil, err
	}
	defer scope.unlock()

	var order models.Order
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("order", orderID)
			}
			return err
		}
		diff := quantity - order.Quantity
		if diff == 0 {
			return nil
		}

		var locked map[uint]*models.Product
		if diff > 0 {
			if combo, ok := scope.combos[item.ID]; ok && item.Kind == models.ItemCombo && !combo.IsActive {
				return fmt.Errorf("%w: combo %q is not available", ErrInvalidState, combo.Name)
			}
			if locked, err = lockProducts(tx, scope.productIDs([]models.ItemRef{item})); err != nil {
				return err
			}
			if shortfalls := scope.shortfalls(item, diff, locked); len(shortfalls) > 0 {
				return &InsufficientStockError{Shortfalls: shortfalls}
			}
		} else if locked, err = lockExistingProducts(tx, scope.productIDs([]models.ItemRef{item})); err != nil {
			return err
		}

		reason := fmt.Sprintf("order %d quantity %d -> %d", order.ID, order.Quantity, quantity)
		if err := scope.move(tx, item, -diff, locked, reason, s.now()); err != nil {
			return err
		}

		order.Quantity = quantity
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"quantity": quantity, "updated_at": s.now()}).Error
	})
	if err != nil {
		return nil, err
	}

	s.publishOrder(order.TableID, "updated", &order)
	return &order, nil
}

// RemoveOrder restores the full stock of an order line and deletes it.
func (s *OrderService) RemoveOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	current, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := current.Item()

	scope, err := s.acquire(ctx, current.TableID, []models.ItemRef{item})
	if err != nil {
		return nil, err
	}
	defer scope.unlock()

	var order models.Order
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("order", orderID)
			}
			return err
		}
		locked, err := lockExistingProducts(tx, scope.productIDs([]models.ItemRef{item}))
		if err != nil {
			return err
		}
		reason := fmt.Sprintf("order %d removed", order.ID)
		if err := scope.move(tx, item, order.Quantity, locked, reason, s.now()); err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.publishOrder(order.TableID, "removed", &order)
	return &order, nil
}

// ClearOrders voids every pending line of a table (or the standalone bucket) and puts
// the stock back. It returns the number of lines removed.
func (s *OrderService) ClearOrders(ctx context.Context, tableID *uint) (int, error) {
	for attempt := 0; attempt < clearRetries; attempt++ {
		n, err := s.clearOnce(ctx, tableID)
		if errors.Is(err, errLockSetStale) {
			continue
		}
		if err != nil {
			return 0, err
		}
		utils.InfoLogger.Printf("Cleared %d orders (%s)", n, orderScopeKey(tableID))
		s.publish(EventOrdersCleared, map[string]interface{}{"table_id": tableID, "removed": n})
		return n, nil
	}
	return 0, fmt.Errorf("failed to clear orders: %w", errLockSetStale)
}

func (s *OrderService) clearOnce(ctx context.Context, tableID *uint) (int, error) {
	before, err := s.ListOrders(ctx, tableID)
	if err != nil {
		return 0, err
	}
	items := make([]models.ItemRef, 0, len(before))
	for i := range before {
		items = append(items, before[i].Item())
	}

	scope, err := s.acquire(ctx, tableID, items)
	if err != nil {
		return 0, err
	}
	defer scope.unlock()

	var removed int
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		orders, err := lockOrders(tx, tableID)
		if err != nil {
			return err
		}
		if !scope.covers(orders) {
			return errLockSetStale
		}
		refs := make([]models.ItemRef, 0, len(orders))
		for i := range orders {
			refs = append(refs, orders[i].Item())
		}
		locked, err := lockExistingProducts(tx, scope.productIDs(refs))
		if err != nil {
			return err
		}
		for i := range orders {
			reason := fmt.Sprintf("order %d cleared", orders[i].ID)
			if err := scope.move(tx, orders[i].Item(), orders[i].Quantity, locked, reason, s.now()); err != nil {
				return err
			}
		}
		if len(orders) > 0 {
			if err := scopeOrders(tx, tableID).Delete(&models.Order{}).Error; err != nil {
				return fmt.Errorf("failed to clear orders: %w", err)
			}
		}
		removed = len(orders)
		return nil
	})
	return removed, err
}

func (s *OrderService) getOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.conn(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("order", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// acquire takes the combo keys first, loads the recipes under them, then takes every
// product key together with the order scope key.
func (s *OrderService) acquire(ctx context.Context, tableID *uint, items []models.ItemRef) (*stockScope, error) {
	var comboKeys []string
	var comboIDs []uint
	seen := make(map[uint]bool)
	for _, item := range items {
		if item.Kind == models.ItemCombo && !seen[item.ID] {
			seen[item.ID] = true
			comboIDs = append(comboIDs, item.ID)
			comboKeys = append(comboKeys, comboKey(item.ID))
		}
	}
	unlockCombos := s.locker.Lock(comboKeys...)

	scope := &stockScope{combos: make(map[uint]*models.ComboItem, len(comboIDs))}
	for _, id := range comboIDs {
		combo, err := loadCombo(s.conn(ctx), id)
		if err != nil {
			unlockCombos()
			return nil, err
		}
		scope.combos[id] = combo
	}

	keys := []string{orderScopeKey(tableID)}
	scope.products = make(map[uint]bool)
	for _, id := range scope.productIDs(items) {
		scope.products[id] = true
		keys = append(keys, productKey(id))
	}
	unlockRest := s.locker.Lock(keys...)
	scope.unlock = func() {
		unlockRest()
		unlockCombos()
	}
	return scope, nil
}

func (s *OrderService) publishOrder(tableID *uint, action string, order *models.Order) {
	s.publish(EventOrderChanged, map[string]interface{}{
		"table_id": tableID,
		"action":   action,
		"order":    order,
	})
}

type unitUse struct {
	productID uint
	perUnit   int
}

// uses expands an item into the products it draws from.
func (sc *stockScope) uses(item models.ItemRef) []unitUse {
	if item.Kind != models.ItemCombo {
		return []unitUse{{productID: item.ID, perUnit: 1}}
	}
	combo, ok := sc.combos[item.ID]
	if !ok {
		return nil
	}
	out := make([]unitUse, 0, len(combo.Components))
	for _, c := range combo.Components {
		out = append(out, unitUse{productID: c.ProductID, perUnit: c.Quantity})
	}
	return out
}

func (sc *stockScope) productIDs(items []models.ItemRef) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, item := range items {
		for _, u := range sc.uses(item) {
			if !seen[u.productID] {
				seen[u.productID] = true
				ids = append(ids, u.productID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// covers reports whether every order only needs combos and product keys already held.
func (sc *stockScope) covers(orders []models.Order) bool {
	for i := range orders {
		item := orders[i].Item()
		if item.Kind == models.ItemCombo {
			if _, ok := sc.combos[item.ID]; !ok {
				return false
			}
		}
		for _, u := range sc.uses(item) {
			if !sc.products[u.productID] {
				return false
			}
		}
	}
	return true
}

func (sc *stockScope) shortfalls(item models.ItemRef, units int, locked map[uint]*models.Product) []Shortfall {
	if item.Kind == models.ItemCombo {
		return checkComboStock(sc.combos[item.ID], units, locked).Shortfalls()
	}
	p := locked[item.ID]
	if p.Quantity >= units {
		return nil
	}
	return []Shortfall{{
		ProductID:         p.ID,
		ProductName:       p.Name,
		RequiredQuantity:  units,
		AvailableQuantity: p.Quantity,
	}}
}

// move applies units of item to stock: negative sells, positive restores. Products that
// no longer exist are skipped when restoring.
func (sc *stockScope) move(tx *gorm.DB, item models.ItemRef, units int, locked map[uint]*models.Product, reason string, now time.Time) error {
	for _, u := range sc.uses(item) {
		p, ok := locked[u.productID]
		if !ok {
			if units < 0 {
				return notFound("product", u.productID)
			}
			continue
		}
		if err := applyStockChange(tx, p, u.perUnit*units, models.ChangeSale, reason, now); err != nil {
			return err
		}
	}
	return nil
}

func findOrderLine(tx *gorm.DB, tableID *uint, item models.ItemRef) (*models.Order, error) {
	q := scopeOrders(tx, tableID)
	if item.Kind == models.ItemCombo {
		q = q.Where("combo_id = ?", item.ID)
	} else {
		q = q.Where("product_id = ? AND combo_id IS NULL", item.ID)
	}
	var orders []models.Order
	if err := q.Order("id").Limit(1).Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func lockOrders(tx *gorm.DB, tableID *uint) ([]models.Order, error) {
	var orders []models.Order
	if err := scopeOrders(forUpdate(tx), tableID).Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// lockExistingProducts row-locks the given products, leaving out ids that are gone.
func lockExistingProducts(tx *gorm.DB, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := forUpdate(tx).Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}
