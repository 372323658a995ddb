package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// AutoMigrate membuat atau memperbarui semua tabel
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Table{},
		&models.Session{},
		&models.TimeExtension{},
		&models.Product{},
		&models.ComboItem{},
		&models.ComboComponent{},
		&models.InventoryEntry{},
		&models.Order{},
		&models.Transaction{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
