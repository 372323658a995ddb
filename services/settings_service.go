package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

type tableCounter interface {
	SetTableCount(ctx context.Context, count int) ([]models.TableState, error)
}

// SettingsService reads and saves the process-wide key/value settings.
type SettingsService struct {
	*base
	tables tableCounter
}

// SettingsInput is the payload of a settings save. TableCount 0 keeps the current tables.
type SettingsInput struct {
	HourlyRate   float64 `json:"hourlyRate"`
	HalfHourRate float64 `json:"halfHourRate"`
	TableCount   int     `json:"tableCount"`
}

// Rates returns the configured tariff, falling back to DefaultRates per missing key.
func (s *SettingsService) Rates(ctx context.Context) (Rates, error) {
	values, err := s.All(ctx)
	if err != nil {
		return Rates{}, err
	}
	return Rates{
		HourlyRate:   parseRate(values, models.SettingHourlyRate, DefaultRates.HourlyRate),
		HalfHourRate: parseRate(values, models.SettingHalfHourRate, DefaultRates.HalfHourRate),
	}, nil
}

// All returns every stored setting keyed by name.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.conn(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// Save validates and upserts the tariff and, when given, reprovisions the tables.
func (s *SettingsService) Save(ctx context.Context, in SettingsInput) error {
	if in.HourlyRate <= 0 {
		return invalid("hourlyRate", "must be greater than 0")
	}
	if in.HalfHourRate <= 0 {
		return invalid("halfHourRate", "must be greater than 0")
	}
	if in.TableCount != 0 && (in.TableCount < 1 || in.TableCount > maxTableCount) {
		return invalid("tableCount", fmt.Sprintf("table count must be between 1 and %d", maxTableCount))
	}

	rows := []models.Setting{
		{Key: models.SettingHourlyRate, Value: strconv.FormatFloat(in.HourlyRate, 'f', -1, 64)},
		{Key: models.SettingHalfHourRate, Value: strconv.FormatFloat(in.HalfHourRate, 'f', -1, 64)},
	}
	if in.TableCount > 0 {
		rows = append(rows, models.Setting{Key: models.SettingTableCount, Value: strconv.Itoa(in.TableCount)})
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := saveSetting(tx, &rows[i], s.now()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if in.TableCount > 0 && s.tables != nil {
		if _, err := s.tables.SetTableCount(ctx, in.TableCount); err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Settings saved: hourly=%v half_hour=%v tables=%d", in.HourlyRate, in.HalfHourRate, in.TableCount)
	return nil
}

// TableCount returns the configured number of tables, or 0 when it was never set.
func (s *SettingsService) TableCount(ctx context.Context) (int, error) {
	values, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(values[models.SettingTableCount])
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

func saveSetting(tx *gorm.DB, row *models.Setting, now time.Time) error {
	row.UpdatedAt = now
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save setting %s: %w", row.Key, err)
	}
	return nil
}

func parseRate(values map[string]string, key string, fallback float64) float64 {
	raw, ok := values[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		utils.ErrorLogger.Printf("Invalid %s setting %q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}
