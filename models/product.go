package models

import "time"

const (
	CategoryDrink     = "drink"
	CategoryFood      = "food"
	CategoryAccessory = "accessory"
	CategoryOther     = "other"
	CategoryCombo     = "combo"
)

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost      float64   `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Category  string    `gorm:"type:varchar(20);not null" json:"category"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsProductCategory membatasi kategori produk biasa (combo punya kategori sendiri)
func IsProductCategory(category string) bool {
	switch category {
	case CategoryDrink, CategoryFood, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}
