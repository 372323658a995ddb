package models

import "time"

// Billing mode sesi
const (
	ModeOpen      = "open"
	ModeHour      = "hour"
	ModeCountdown = "countdown"
)

type Session struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TableID           uint            `gorm:"not null;index" json:"table_id"`
	StartTime         time.Time       `gorm:"not null" json:"start_time"`
	EndTime           *time.Time      `json:"end_time"`
	DurationMinutes   *int            `json:"duration_minutes"`
	Mode              string          `gorm:"type:varchar(10);not null" json:"mode"`
	CountdownDuration *int            `json:"countdown_duration,omitempty"`
	TimeExtensions    []TimeExtension `gorm:"foreignKey:SessionID" json:"time_extensions"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

// IsOpen reports whether the session is still running.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// ExtensionSeconds sums every extension granted to the session.
func (s *Session) ExtensionSeconds() int {
	total := 0
	for _, ext := range s.TimeExtensions {
		total += ext.AddedDuration
	}
	return total
}

type TimeExtension struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uint      `gorm:"not null;index" json:"session_id"`
	AddedDuration int       `gorm:"not null" json:"added_duration"`
	AddedAt       time.Time `gorm:"not null" json:"added_at"`
	Cost          float64   `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
}
