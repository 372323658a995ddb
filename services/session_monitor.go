package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// SessionMonitor watches open sessions and announces the ones whose time is up
// (hour mode after an hour, countdown once the allocation is used). It only notifies:
// stopping stays an explicit call.
type SessionMonitor struct {
	*base
	Interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	notified map[uint]bool
}

func (s *Services) NewSessionMonitor(interval time.Duration) *SessionMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SessionMonitor{
		base:     s.Sessions.base,
		Interval: interval,
		stopChan: make(chan struct{}),
		notified: make(map[uint]bool),
	}
}

func (m *SessionMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := m.Check(context.Background()); err != nil {
					utils.ErrorLogger.Printf("Session monitor: %v", err)
				}
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *SessionMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Check publishes one time-up event per expired open session and returns their ids.
func (m *SessionMonitor) Check(ctx context.Context) ([]uint, error) {
	var sessions []models.Session
	if err := m.conn(ctx).Preload("TimeExtensions").
		Where("end_time IS NULL").Find(&sessions).Error; err != nil {
		return nil, err
	}

	now := m.now()
	open := make(map[uint]bool, len(sessions))
	var expired []uint

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range sessions {
		session := &sessions[i]
		open[session.ID] = true
		if m.notified[session.ID] || !ShouldAutoStop(session, now) {
			continue
		}
		m.notified[session.ID] = true
		expired = append(expired, session.ID)
		m.publish(EventSessionTimeUp, map[string]interface{}{
			"table_id":   session.TableID,
			"session_id": session.ID,
			"mode":       session.Mode,
			"elapsed":    ElapsedSeconds(session, now),
		})
	}
	// lupakan sesi yang sudah ditutup
	for id := range m.notified {
		if !open[id] {
			delete(m.notified, id)
		}
	}
	return expired, nil
}
