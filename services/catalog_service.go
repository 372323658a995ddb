package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// CatalogService manages products and combo recipes.
type CatalogService struct {
	*base
}

// ProductInput is the writable part of a product. Quantity nil on update keeps the stock.
type ProductInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Quantity *int    `json:"quantity"`
	Category string  `json:"category"`
}

type ComponentInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ComboInput is the writable part of a combo. Components replace the whole recipe.
type ComboInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	IsActive    *bool            `json:"is_active"`
	Components  []ComponentInput `json:"components"`
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	switch {
	case in.Name == "":
		return invalid("name", "is required")
	case in.Price <= 0:
		return invalid("price", "must be greater than zero")
	case in.Cost < 0:
		return invalid("cost", "must not be negative")
	case in.Quantity != nil && *in.Quantity < 0:
		return invalid("quantity", "must not be negative")
	case !models.IsProductCategory(in.Category):
		return invalid("category", fmt.Sprintf("unknown category %q", in.Category))
	}
	return nil
}

func (in *ComboInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "is required")
	}
	if in.Price <= 0 {
		return invalid("price", "must be greater than zero")
	}
	if len(in.Components) == 0 {
		return invalid("components", "a combo needs at least one component")
	}
	seen := make(map[uint]bool, len(in.Components))
	for _, c := range in.Components {
		if c.Quantity <= 0 {
			return invalid("components", fmt.Sprintf("quantity for product %d must be positive", c.ProductID))
		}
		if seen[c.ProductID] {
			return fmt.Errorf("%w: product %d appears twice in the combo", ErrConflict, c.ProductID)
		}
		seen[c.ProductID] = true
	}
	return nil
}

// ListProducts returns products, optionally of one category.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	q := s.conn(ctx)
	if category != "" {
		q = q.Where("category = ?", strings.ToLower(category))
	}
	var products []models.Product
	if err := q.Order("category, name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.conn(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product", id)
		}
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a product and records its opening stock as an "add" ledger row.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(catalogKey)
	defer unlock()

	var product models.Product
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, in.Name, 0); err != nil {
			return err
		}
		product = models.Product{
			Name:     in.Name,
			Price:    in.Price,
			Cost:     in.Cost,
			Category: in.Category,
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		opening := 0
		if in.Quantity != nil {
			opening = *in.Quantity
		}
		return applyStockChange(tx, &product, opening, models.ChangeAdd, "initial stock", s.now())
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Product %d (%s) created with %d in stock", product.ID, product.Name, product.Quantity)
	s.publish(EventInventoryChanged, map[string]interface{}{"product": product})
	return &product, nil
}

// UpdateProduct rewrites name, price, cost and category. A changed quantity is ledgered
// as an "update" with the difference.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(catalogKey, productKey(id))
	defer unlock()

	var product *models.Product
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProduct(tx, id)
		if err != nil {
			return err
		}
		if err := ensureUniqueName(tx, in.Name, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":       in.Name,
			"price":      in.Price,
			"cost":       in.Cost,
			"category":   in.Category,
			"updated_at": s.now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		p.Name, p.Price, p.Cost, p.Category = in.Name, in.Price, in.Cost, in.Category

		if in.Quantity != nil && *in.Quantity != p.Quantity {
			if err := applyStockChange(tx, p, *in.Quantity-p.Quantity, models.ChangeUpdate, "product updated", s.now()); err != nil {
				return err
			}
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

// DeleteProduct removes a product that no combo recipe still uses.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	unlock := s.locker.Lock(catalogKey, productKey(id))
	defer unlock()

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProduct(tx, id); err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&models.ComboComponent{}).Where("product_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: product %d is part of %d combo recipe(s)", ErrConflict, id, used)
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Printf("Product %d deleted", id)
	s.publish(EventInventoryChanged, map[string]interface{}{"product_id": id, "action": "deleted"})
	return nil
}

func ensureUniqueName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Product{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: a product named %q already exists", ErrConflict, name)
	}
	return nil
}

// ListCombos returns combos with their recipes. Inactive ones only when asked.
func (s *CatalogService) ListCombos(ctx context.Context, includeInactive bool) ([]models.ComboItem, error) {
	q := s.conn(ctx).Preload("Components").Preload("Components.Product")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var combos []models.ComboItem
	if err := q.Order("name").Find(&combos).Error; err != nil {
		return nil, err
	}
	return combos, nil
}

func (s *CatalogService) GetCombo(ctx context.Context, id uint) (*models.ComboItem, error) {
	return loadCombo(s.conn(ctx), id)
}

func (s *CatalogService) CreateCombo(ctx context.Context, in ComboInput) (*models.ComboItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var comboID uint
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		combo := models.ComboItem{
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Category:    models.CategoryCombo,
			IsActive:    true,
		}
		if err := tx.Omit("Components").Create(&combo).Error; err != nil {
			return fmt.Errorf("failed to create combo: %w", err)
		}
		if in.IsActive != nil && !*in.IsActive {
			if err := tx.Model(&models.ComboItem{}).Where("id = ?", combo.ID).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		comboID = combo.ID
		return writeComponents(tx, combo.ID, in.Components)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Combo %d (%s) created with %d components", comboID, in.Name, len(in.Components))
	return loadCombo(s.conn(ctx), comboID)
}

// UpdateCombo rewrites a combo and replaces its recipe in one transaction.
func (s *CatalogService) UpdateCombo(ctx context.Context, id uint, in ComboInput) (*models.ComboItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(comboKey(id))
	defer unlock()

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var combo models.ComboItem
		if err := forUpdate(tx).First(&combo, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("combo item", id)
			}
			return err
		}
		updates := map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"price":       in.Price,
			"updated_at":  s.now(),
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if err := tx.Model(&models.ComboItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update combo: %w", err)
		}
		if err := tx.Where("combo_id = ?", id).Delete(&models.ComboComponent{}).Error; err != nil {
			return err
		}
		return writeComponents(tx, id, in.Components)
	})
	if err != nil {
		return nil, err
	}
	return loadCombo(s.conn(ctx), id)
}

// DeleteCombo hides a combo from sale. Its history stays intact.
func (s *CatalogService) DeleteCombo(ctx context.Context, id uint) error {
	unlock := s.locker.Lock(comboKey(id))
	defer unlock()

	res := s.conn(ctx).Model(&models.ComboItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": s.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("combo item", id)
	}
	utils.InfoLogger.Printf("Combo %d deactivated", id)
	return nil
}

func writeComponents(tx *gorm.DB, comboID uint, components []ComponentInput) error {
	for _, c := range components {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", c.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("product", c.ProductID)
		}
		row := models.ComboComponent{ComboID: comboID, ProductID: c.ProductID, Quantity: c.Quantity}
		if err := tx.Omit("Product").Create(&row).Error; err != nil {
			return fmt.Errorf("failed to add component %d: %w", c.ProductID, err)
		}
	}
	return nil
}
