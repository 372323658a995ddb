package models

import "time"

// Jenis perubahan stok
const (
	ChangeAdd        = "add"
	ChangeUpdate     = "update"
	ChangeSale       = "sale"
	ChangeAdjustment = "adjustment"
)

// InventoryEntry is an append-only stock movement. The product fields are a snapshot
// taken when the movement happened; Quantity is the stock level after it.
type InventoryEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	ProductName    string    `gorm:"type:varchar(100);not null" json:"product_name"`
	Price          float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost           float64   `gorm:"type:decimal(10,2);not null" json:"cost"`
	Category       string    `gorm:"type:varchar(20);not null" json:"category"`
	ChangeType     string    `gorm:"type:varchar(20);not null;index" json:"change_type"`
	ChangeQuantity int       `gorm:"not null" json:"change_quantity"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Reason         string    `gorm:"type:varchar(255)" json:"reason,omitempty"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

func (InventoryEntry) TableName() string {
	return "inventory"
}
