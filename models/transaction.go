package models

import "time"

const (
	PaymentCash  = "cash"
	PaymentGCash = "gcash"
)

// Transaction is the immutable receipt written once per checkout.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         *uint     `gorm:"index" json:"table_id"`
	SessionID       *uint     `gorm:"index" json:"session_id"`
	ReceiptNumber   string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"receipt_number"`
	TotalAmount     float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	TimeCost        float64   `gorm:"type:decimal(10,2);not null;default:0" json:"time_cost"`
	ProductCost     float64   `gorm:"type:decimal(10,2);not null;default:0" json:"product_cost"`
	PaymentMethod   string    `gorm:"type:varchar(10);not null;default:'cash'" json:"payment_method"`
	ReferenceNumber *string   `gorm:"type:varchar(100)" json:"reference_number,omitempty"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}
