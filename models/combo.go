package models

import "time"

type ComboItem struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"type:varchar(100);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Price       float64          `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string           `gorm:"type:varchar(20);not null;default:'combo'" json:"category"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`
	Components  []ComboComponent `gorm:"foreignKey:ComboID" json:"components"`
	CreatedAt   time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updated_at"`
}

// ComboComponent is one line of a combo recipe.
type ComboComponent struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ComboID   uint    `gorm:"not null;uniqueIndex:idx_combo_product" json:"combo_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_combo_product" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}
