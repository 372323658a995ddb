package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port       string
	GinMode    string
	LogLevel   string
	DBDriver   string
	DBDSN      string
	CORSOrigin string
	VenueName  string
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	RateBurst int
	SeedData  bool

	// MonitorInterval is how often open sessions are checked for used-up time.
	MonitorInterval time.Duration
}

// Load membaca .env (jika ada) lalu environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBDSN:      os.Getenv("DB_DSN"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		VenueName:  getEnv("VENUE_NAME", "Billiard Hall"),
		RateBurst:  20,
		SeedData:   true,

		MonitorInterval: 5 * time.Second,
	}

	var err error
	if cfg.RateLimit, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if cfg.RateBurst, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
	}
	if v := os.Getenv("SEED_DATA"); v != "" {
		if cfg.SeedData, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid SEED_DATA %q: %w", v, err)
		}
	}

	if v := os.Getenv("SESSION_MONITOR_INTERVAL"); v != "" {
		if cfg.MonitorInterval, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid SESSION_MONITOR_INTERVAL %q: %w", v, err)
		}
	}

	if cfg.DBDSN == "" {
		cfg.DBDSN = defaultDSN(cfg.DBDriver)
	}
	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// defaultDSN builds a DSN from the discrete DB_* variables.
func defaultDSN(driver string) string {
	host := getEnv("DB_HOST", "127.0.0.1")
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	name := getEnv("DB_NAME", "billiard_pos")

	switch driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			host, user, pass, name, getEnv("DB_PORT", "5432"))
	case DriverSQLite:
		return getEnv("DB_PATH", "billiard_pos.db")
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, getEnv("DB_PORT", "3306"), name)
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		dialector = mysql.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == DriverSQLite {
		// satu writer untuk sqlite
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
