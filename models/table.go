package models

import "time"

// Status meja
const (
	TableStatusAvailable     = "available"
	TableStatusOccupied      = "occupied"
	TableStatusStopped       = "stopped"
	TableStatusNeedsCheckout = "needs_checkout"
	TableStatusInactive      = "inactive"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableState is a table joined with its latest session, as shown on the floor view.
type TableState struct {
	Table
	IsActive bool     `json:"is_active"`
	Session  *Session `json:"session"`
	Orders   []Order  `json:"orders,omitempty"`
}
