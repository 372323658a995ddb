package charts

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/yeremiapane/billiard-pos/services"
)

// ErrNoSales is returned when a day has nothing to plot.
var ErrNoSales = errors.New("no product sales to plot")

const (
	chartWidth  = 800
	chartHeight = 480
	barWidth    = 50
)

// TopProducts renders the report's best sellers as a PNG bar chart of units sold.
func TopProducts(w io.Writer, report *services.DailyReport) error {
	if report == nil || len(report.TopProducts) == 0 {
		return ErrNoSales
	}

	bars := make([]chart.Value, 0, len(report.TopProducts))
	maxUnits := 0.0
	for _, p := range report.TopProducts {
		units := float64(p.Units)
		if units > maxUnits {
			maxUnits = units
		}
		bars = append(bars, chart.Value{Label: p.Name, Value: units})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Top products %s", report.Date),
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		// sumbu Y tetap mulai dari 0, satu bar saja juga valid
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxUnits * 1.1},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart for %s: %w", report.Date, err)
	}
	return nil
}
