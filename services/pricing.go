package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/billiard-pos/models"
)

const (
	halfHourSeconds = 30 * 60
	hourSeconds     = 60 * 60
)

// Rates is the tariff used by every billing mode.
type Rates struct {
	HourlyRate   float64 `json:"hourly_rate"`
	HalfHourRate float64 `json:"half_hour_rate"`
}

// DefaultRates matches the tariff seeded on a fresh install.
var DefaultRates = Rates{HourlyRate: 150, HalfHourRate: 100}

// OpenTimeQuote is the open-time price plus its display text.
type OpenTimeQuote struct {
	TotalCost float64 `json:"totalCost"`
	Breakdown string  `json:"breakdown"`
}

// OpenTimeCost prices an open-time session.
//
// Under 30 minutes costs the half-hour rate, up to the first full hour costs the hourly
// rate, and beyond that every completed 30 minute block adds, alternately, the half-hour
// rate and the remainder of the hourly rate. The numeric total is authoritative; the
// breakdown text is informational and can understate odd block counts.
func OpenTimeCost(elapsedSeconds int64, rates Rates) OpenTimeQuote {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	minutes := elapsedSeconds / 60

	if elapsedSeconds < halfHourSeconds {
		return OpenTimeQuote{
			TotalCost: round2(rates.HalfHourRate),
			Breakdown: fmt.Sprintf("0-30min %s", peso(rates.HalfHourRate)),
		}
	}
	if minutes <= 60 {
		return OpenTimeQuote{
			TotalCost: round2(rates.HourlyRate),
			Breakdown: fmt.Sprintf("First hour %s", peso(rates.HourlyRate)),
		}
	}

	total := decimal.NewFromFloat(rates.HourlyRate)
	blocks := (minutes - 60) / 30
	for i := int64(0); i < blocks; i++ {
		if i%2 == 0 {
			total = total.Add(decimal.NewFromFloat(rates.HalfHourRate))
		} else {
			total = total.Add(decimal.NewFromFloat(rates.HourlyRate - rates.HalfHourRate))
		}
	}

	fullHours := minutes / 60
	breakdown := fmt.Sprintf("%d hr %s", fullHours, peso(rates.HourlyRate))
	switch {
	case blocks == 1:
		breakdown += fmt.Sprintf(" + 30min %s", peso(rates.HalfHourRate))
	case blocks > 1:
		if extraHours := blocks / 2; extraHours > 0 {
			breakdown += fmt.Sprintf(" + %d hr %s", extraHours, peso(rates.HourlyRate))
		}
		if blocks%2 > 0 {
			breakdown += fmt.Sprintf(" + 30min %s", peso(rates.HalfHourRate))
		}
	}

	return OpenTimeQuote{
		TotalCost: total.Round(2).InexactFloat64(),
		Breakdown: breakdown,
	}
}

// HourModeCost bills linearly per started minute at the hourly rate.
func HourModeCost(elapsedSeconds int64, rates Rates) float64 {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	minutes := int64(math.Ceil(float64(elapsedSeconds) / 60))
	cost := decimal.NewFromInt(minutes).
		Div(decimal.NewFromInt(60)).
		Mul(decimal.NewFromFloat(rates.HourlyRate))
	return cost.Round(2).InexactFloat64()
}

// CountdownCost prices a countdown session by its total allocation (initial grant plus
// extensions), not by how much of it was used.
func CountdownCost(totalAllocatedSeconds int64, rates Rates) float64 {
	if totalAllocatedSeconds < 0 {
		totalAllocatedSeconds = 0
	}
	minutes := totalAllocatedSeconds / 60
	switch {
	case minutes <= 30:
		return round2(rates.HalfHourRate)
	case minutes <= 60:
		return round2(rates.HourlyRate)
	}
	blocks := (minutes - 60 + 29) / 30
	cost := decimal.NewFromFloat(rates.HourlyRate).
		Add(decimal.NewFromFloat(rates.HalfHourRate).Mul(decimal.NewFromInt(blocks)))
	return cost.Round(2).InexactFloat64()
}

// ElapsedSeconds measures a session up to its end time, or up to now while it runs.
func ElapsedSeconds(session *models.Session, now time.Time) int64 {
	end := now
	if session.EndTime != nil {
		end = *session.EndTime
	}
	elapsed := int64(end.Sub(session.StartTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// AllocatedSeconds is the countdown grant plus every extension.
func AllocatedSeconds(session *models.Session) int64 {
	total := int64(session.ExtensionSeconds())
	if session.CountdownDuration != nil {
		total += int64(*session.CountdownDuration)
	}
	return total
}

// RemainingSeconds is the countdown time left, never negative. Non-countdown sessions
// have no allocation and always report zero.
func RemainingSeconds(session *models.Session, now time.Time) int64 {
	if session.Mode != models.ModeCountdown {
		return 0
	}
	remaining := AllocatedSeconds(session) - ElapsedSeconds(session, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SessionCost prices a session according to its mode.
func SessionCost(session *models.Session, now time.Time, rates Rates) float64 {
	switch session.Mode {
	case models.ModeOpen:
		return OpenTimeCost(ElapsedSeconds(session, now), rates).TotalCost
	case models.ModeCountdown:
		return CountdownCost(AllocatedSeconds(session), rates)
	default:
		return HourModeCost(ElapsedSeconds(session, now), rates)
	}
}

// ShouldAutoStop reports whether a monitor should call stop for this running session.
// The server never stops sessions on its own.
func ShouldAutoStop(session *models.Session, now time.Time) bool {
	if !session.IsOpen() {
		return false
	}
	switch session.Mode {
	case models.ModeHour:
		return ElapsedSeconds(session, now) >= hourSeconds
	case models.ModeCountdown:
		return ElapsedSeconds(session, now) >= AllocatedSeconds(session)
	}
	return false
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func peso(v float64) string {
	return "₱" + decimal.NewFromFloat(v).String()
}
