package utils

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

var (
	db *gorm.DB
	mu sync.RWMutex
)

// InitDB menyimpan koneksi database untuk health check
func InitDB(database *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	db = database
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}

// PingDB checks that the shared connection is still usable.
func PingDB(ctx context.Context) error {
	conn := GetDB()
	if conn == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
