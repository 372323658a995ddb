package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

const maxTableCount = 20

// SessionService drives the per-table session lifecycle:
// available -> occupied -> stopped | needs_checkout -> available.
type SessionService struct {
	*base
	settings *SettingsService
}

// StopResult is returned when a running session is stopped.
type StopResult struct {
	SessionID    uint    `json:"session_id"`
	TotalMinutes int     `json:"totalMinutes"`
	Cost         float64 `json:"cost"`
	Status       string  `json:"status"`
}

// SessionFilter narrows ListSessions. Zero fields are ignored.
type SessionFilter struct {
	From    *time.Time
	To      *time.Time
	TableID *uint
}

// StartSession opens a session on an idle table. Countdown mode needs a duration in seconds.
func (s *SessionService) StartSession(ctx context.Context, tableID uint, mode string, duration *int) (*models.Session, error) {
	switch mode {
	case models.ModeOpen, models.ModeHour:
		duration = nil
	case models.ModeCountdown:
		if duration == nil || *duration <= 0 {
			return nil, invalid("duration", "countdown mode requires a positive duration in seconds")
		}
	default:
		return nil, invalid("mode", fmt.Sprintf("unknown mode %q", mode))
	}

	unlock := s.locker.Lock(tableKey(tableID))
	defer unlock()

	var session models.Session
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableID)
		if err != nil {
			return err
		}
		if table.Status == models.TableStatusInactive {
			return fmt.Errorf("%w: table %d is inactive", ErrInvalidState, tableID)
		}

		active, err := openSession(tx, tableID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrAlreadyActive
		}

		session = models.Session{
			TableID:           tableID,
			StartTime:         s.now(),
			Mode:              mode,
			CountdownDuration: duration,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return tx.Model(table).Update("status", models.TableStatusOccupied).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d session %d started in %s mode", tableID, session.ID, mode)
	s.publish(EventTableUpdated, map[string]interface{}{
		"table_id": tableID,
		"action":   "started",
		"mode":     mode,
		"duration": duration,
	})
	return &session, nil
}

// StopSession closes the open session. A countdown that had already used up its whole
// allocation leaves the table in needs_checkout; every other stop leaves it stopped.
func (s *SessionService) StopSession(ctx context.Context, tableID uint) (*StopResult, error) {
	rates, err := s.settings.Rates(ctx)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(tableKey(tableID))
	defer unlock()

	var result StopResult
	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableID)
		if err != nil {
			return err
		}
		session, err := openSession(tx, tableID)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNoActiveSession
		}

		end := s.now()
		if end.Before(session.StartTime) {
			end = session.StartTime
		}
		totalMinutes := int(math.Ceil(float64(end.Sub(session.StartTime)) / float64(time.Minute)))

		if err := tx.Model(&models.Session{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
			"end_time":         end,
			"duration_minutes": totalMinutes,
		}).Error; err != nil {
			return fmt.Errorf("failed to close session: %w", err)
		}
		session.EndTime = &end
		session.DurationMinutes = &totalMinutes

		status := models.TableStatusStopped
		if session.Mode == models.ModeCountdown && ElapsedSeconds(session, end) >= AllocatedSeconds(session) {
			status = models.TableStatusNeedsCheckout
		}
		if err := tx.Model(table).Update("status", status).Error; err != nil {
			return err
		}

		result = StopResult{
			SessionID:    session.ID,
			TotalMinutes: totalMinutes,
			Cost:         SessionCost(session, end, rates),
			Status:       status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d session %d stopped after %d min (%s)", tableID, result.SessionID, result.TotalMinutes, result.Status)
	s.publish(EventTableUpdated, map[string]interface{}{
		"table_id":     tableID,
		"action":       "stopped",
		"totalMinutes": result.TotalMinutes,
		"status":       result.Status,
	})
	return &result, nil
}

// ExtendSession adds time to a running countdown session. The extension is free at
// creation; the grant is priced as a whole at checkout.
func (s *SessionService) ExtendSession(ctx context.Context, tableID uint, duration int) (*models.TimeExtension, error) {
	if duration <= 0 {
		return nil, invalid("duration", "must be a positive number of seconds")
	}

	unlock := s.locker.Lock(tableKey(tableID))
	defer unlock()

	var extension models.TimeExtension
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTable(tx, tableID); err != nil {
			return err
		}
		session, err := openSession(tx, tableID)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNoActiveSession
		}
		if session.Mode != models.ModeCountdown {
			return ErrNotCountdownMode
		}

		extension = models.TimeExtension{
			SessionID:     session.ID,
			AddedDuration: duration,
			AddedAt:       s.now(),
			Cost:          0,
		}
		return tx.Create(&extension).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(EventTableUpdated, map[string]interface{}{
		"table_id": tableID,
		"action":   "extended",
		"duration": duration,
	})
	return &extension, nil
}

// ResetTable force-closes any open session and frees the table. Calling it twice is harmless.
// A retired table stays inactive.
func (s *SessionService) ResetTable(ctx context.Context, tableID uint) error {
	unlock := s.locker.Lock(tableKey(tableID))
	defer unlock()

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := lockTable(tx, tableID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Session{}).
			Where("table_id = ? AND end_time IS NULL", tableID).
			Update("end_time", s.now()).Error; err != nil {
			return err
		}
		if table.Status == models.TableStatusInactive {
			return nil
		}
		return tx.Model(table).Update("status", models.TableStatusAvailable).Error
	})
	if err != nil {
		return err
	}

	s.publish(EventTableUpdated, map[string]interface{}{
		"table_id": tableID,
		"action":   "reset",
	})
	return nil
}

// ListTables returns every table that is not retired, with its latest session.
func (s *SessionService) ListTables(ctx context.Context) ([]models.TableState, error) {
	db := s.conn(ctx)

	var tables []models.Table
	if err := db.Where("status <> ?", models.TableStatusInactive).Order("id").Find(&tables).Error; err != nil {
		return nil, err
	}

	var sessions []models.Session
	latestIDs := db.Model(&models.Session{}).Select("MAX(id)").Group("table_id")
	if err := db.Preload("TimeExtensions").Where("id IN (?)", latestIDs).Find(&sessions).Error; err != nil {
		return nil, err
	}
	byTable := make(map[uint]*models.Session, len(sessions))
	for i := range sessions {
		byTable[sessions[i].TableID] = &sessions[i]
	}

	states := make([]models.TableState, 0, len(tables))
	for _, t := range tables {
		states = append(states, tableState(t, byTable[t.ID], nil))
	}
	return states, nil
}

// GetTable returns one table with its latest session and pending orders.
func (s *SessionService) GetTable(ctx context.Context, tableID uint) (*models.TableState, error) {
	db := s.conn(ctx)

	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table", tableID)
		}
		return nil, err
	}
	session, err := latestSession(db, tableID)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := db.Where("table_id = ?", tableID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	state := tableState(table, session, orders)
	return &state, nil
}

// SetTableCount provisions tables 1..count. Idle tables above count are deleted when they
// never hosted a session and retired as inactive otherwise, so history survives. A table
// above count that is still in use or has pending orders is retired by its checkout.
func (s *SessionService) SetTableCount(ctx context.Context, count int) ([]models.TableState, error) {
	if count < 1 || count > maxTableCount {
		return nil, invalid("count", fmt.Sprintf("table count must be between 1 and %d", maxTableCount))
	}

	unlock := s.locker.Lock("tables")
	defer unlock()

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		setting := models.Setting{Key: models.SettingTableCount, Value: strconv.Itoa(count)}
		if err := saveSetting(tx, &setting, s.now()); err != nil {
			return err
		}

		var existing []models.Table
		if err := tx.Order("id").Find(&existing).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.Table, len(existing))
		for _, t := range existing {
			byID[t.ID] = t
		}

		for i := 1; i <= count; i++ {
			id := uint(i)
			t, ok := byID[id]
			if !ok {
				table := models.Table{ID: id, Name: fmt.Sprintf("Table %d", i), Status: models.TableStatusAvailable}
				if err := tx.Create(&table).Error; err != nil {
					return fmt.Errorf("failed to create table %d: %w", i, err)
				}
				continue
			}
			if t.Status == models.TableStatusInactive {
				if err := tx.Model(&t).Update("status", models.TableStatusAvailable).Error; err != nil {
					return err
				}
			}
		}

		for _, t := range existing {
			if t.ID <= uint(count) {
				continue
			}
			if t.Status == models.TableStatusInactive {
				continue
			}
			// meja yang belum dibayar tetap aktif sampai checkout
			var pending int64
			if err := tx.Model(&models.Order{}).Where("table_id = ?", t.ID).Count(&pending).Error; err != nil {
				return err
			}
			if t.Status != models.TableStatusAvailable || pending > 0 {
				utils.InfoLogger.Printf("Table %d is %s with %d pending orders, not retiring it", t.ID, t.Status, pending)
				continue
			}
			var sessionCount int64
			if err := tx.Model(&models.Session{}).Where("table_id = ?", t.ID).Count(&sessionCount).Error; err != nil {
				return err
			}
			if sessionCount == 0 {
				if err := tx.Delete(&models.Table{}, t.ID).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&t).Update("status", models.TableStatusInactive).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table count updated to %d", count)
	s.publish(EventTablesUpdated, map[string]interface{}{"tables": tables})
	return tables, nil
}

// ListSessions returns sessions newest first.
func (s *SessionService) ListSessions(ctx context.Context, filter SessionFilter) ([]models.Session, error) {
	q := s.conn(ctx).Preload("TimeExtensions")
	if filter.From != nil {
		q = q.Where("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("start_time < ?", *filter.To)
	}
	if filter.TableID != nil {
		q = q.Where("table_id = ?", *filter.TableID)
	}

	var sessions []models.Session
	if err := q.Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionService) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := s.conn(ctx).Preload("TimeExtensions").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session", id)
		}
		return nil, err
	}
	return &session, nil
}

func tableState(t models.Table, session *models.Session, orders []models.Order) models.TableState {
	return models.TableState{
		Table:    t,
		IsActive: session != nil && session.IsOpen(),
		Session:  session,
		Orders:   orders,
	}
}
