package models

import "time"

type ItemKind string

const (
	ItemProduct ItemKind = "product"
	ItemCombo   ItemKind = "combo"
)

// ItemRef identifies what an order line sells: a product or a combo, never both.
type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   uint     `json:"id"`
}

func ProductRef(id uint) ItemRef { return ItemRef{Kind: ItemProduct, ID: id} }
func ComboRef(id uint) ItemRef   { return ItemRef{Kind: ItemCombo, ID: id} }

// Order is one pending line item for a table, or for the standalone counter when TableID is nil.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableID     *uint     `gorm:"index" json:"table_id"`
	ProductID   *uint     `gorm:"index" json:"product_id"`
	ComboID     *uint     `gorm:"index" json:"combo_id"`
	ProductName string    `gorm:"type:varchar(100);not null" json:"product_name"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// Item returns the tagged identity of the line.
func (o *Order) Item() ItemRef {
	if o.ComboID != nil {
		return ComboRef(*o.ComboID)
	}
	if o.ProductID != nil {
		return ProductRef(*o.ProductID)
	}
	return ItemRef{}
}

// SetItem writes the identity back into the nullable columns.
func (o *Order) SetItem(ref ItemRef) {
	id := ref.ID
	switch ref.Kind {
	case ItemCombo:
		o.ComboID = &id
		o.ProductID = nil
	default:
		o.ProductID = &id
		o.ComboID = nil
	}
}

// Subtotal harga snapshot x jumlah
func (o *Order) Subtotal() float64 {
	return o.Price * float64(o.Quantity)
}
