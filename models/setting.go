package models

import "time"

const (
	SettingHourlyRate   = "hourly_rate"
	SettingHalfHourRate = "half_hour_rate"
	SettingTableCount   = "table_count"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
