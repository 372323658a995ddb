package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/billiard-pos/models"
)

var testRates = Rates{HourlyRate: 150, HalfHourRate: 100}

func TestOpenTimeCost_UnderHalfHourIsHalfHourRate(t *testing.T) {
	for _, s := range []int64{0, 1, 60, 900, 1799} {
		assert.Equal(t, 100.0, OpenTimeCost(s, testRates).TotalCost, "elapsed %d", s)
	}
}

func TestOpenTimeCost_UpToOneHourIsHourlyRate(t *testing.T) {
	for _, s := range []int64{1800, 2400, 3000, 3599, 3600} {
		assert.Equal(t, 150.0, OpenTimeCost(s, testRates).TotalCost, "elapsed %d", s)
	}
}

func TestOpenTimeCost_AlternatingBlocks(t *testing.T) {
	cases := []struct {
		elapsed int64
		want    float64
	}{
		{3660, 150},
		{5399, 150},
		{5400, 250},
		{7200, 300},
		{9000, 400},
		{10800, 450},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OpenTimeCost(tc.elapsed, testRates).TotalCost, "elapsed %d", tc.elapsed)
	}
}

func TestOpenTimeCost_Breakdown(t *testing.T) {
	assert.Equal(t, "0-30min ₱100", OpenTimeCost(600, testRates).Breakdown)
	assert.Equal(t, "First hour ₱150", OpenTimeCost(3000, testRates).Breakdown)
	assert.Equal(t, "1 hr ₱150 + 30min ₱100", OpenTimeCost(5400, testRates).Breakdown)
	assert.Equal(t, "2 hr ₱150 + 1 hr ₱150", OpenTimeCost(7200, testRates).Breakdown)
}

func TestCountdownCost(t *testing.T) {
	assert.Equal(t, 100.0, CountdownCost(1800, testRates))
	assert.Equal(t, 150.0, CountdownCost(3600, testRates))
	assert.Equal(t, 250.0, CountdownCost(5400, testRates))
	assert.Equal(t, 250.0, CountdownCost(4200, testRates))
	assert.Equal(t, 350.0, CountdownCost(7200, testRates))
	assert.Equal(t, 450.0, CountdownCost(7260, testRates))
}

func TestHourModeCost(t *testing.T) {
	assert.Equal(t, 150.0, HourModeCost(3600, testRates))
	assert.Equal(t, 75.0, HourModeCost(1800, testRates))
	// started minutes round up
	assert.Equal(t, 2.5, HourModeCost(1, testRates))
	assert.Equal(t, 0.0, HourModeCost(0, testRates))
}

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	session := &models.Session{
		StartTime:         start,
		Mode:              models.ModeCountdown,
		CountdownDuration: intPtr(1800),
		TimeExtensions:    []models.TimeExtension{{AddedDuration: 600}},
	}

	assert.Equal(t, int64(2400), AllocatedSeconds(session))
	assert.Equal(t, int64(1400), RemainingSeconds(session, start.Add(1000*time.Second)))
	assert.Equal(t, int64(0), RemainingSeconds(session, start.Add(3*time.Hour)))

	open := &models.Session{StartTime: start, Mode: models.ModeOpen}
	assert.Equal(t, int64(0), RemainingSeconds(open, start.Add(time.Minute)))
}

func TestSessionCost_UsesEndTimeWhenClosed(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	session := &models.Session{StartTime: start, EndTime: &end, Mode: models.ModeOpen}

	assert.Equal(t, 250.0, SessionCost(session, start.Add(10*time.Hour), testRates))

	countdown := &models.Session{StartTime: start, Mode: models.ModeCountdown, CountdownDuration: intPtr(3600)}
	assert.Equal(t, 150.0, SessionCost(countdown, start.Add(5*time.Minute), testRates))
}

func TestShouldAutoStop(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	hour := &models.Session{StartTime: start, Mode: models.ModeHour}
	assert.False(t, ShouldAutoStop(hour, start.Add(59*time.Minute)))
	assert.True(t, ShouldAutoStop(hour, start.Add(time.Hour)))

	countdown := &models.Session{StartTime: start, Mode: models.ModeCountdown, CountdownDuration: intPtr(600)}
	assert.True(t, ShouldAutoStop(countdown, start.Add(10*time.Minute)))

	open := &models.Session{StartTime: start, Mode: models.ModeOpen}
	assert.False(t, ShouldAutoStop(open, start.Add(10*time.Hour)))
}
