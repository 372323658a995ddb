package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/charts"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(svc *services.Services) *ReportController {
	return &ReportController{Reports: svc.Reports}
}

// GetDailyReport -> ringkasan pendapatan satu hari (YYYY-MM-DD)
func (rc *ReportController) GetDailyReport(c *gin.Context) {
	report, ok := rc.load(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily report", report)
}

// GetDailyChart -> grafik PNG produk terlaris
func (rc *ReportController) GetDailyChart(c *gin.Context) {
	report, ok := rc.load(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := charts.TopProducts(&buf, report); err != nil {
		if errors.Is(err, charts.ErrNoSales) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GetWeeklyReport -> tujuh hari mulai dari startDate
func (rc *ReportController) GetWeeklyReport(c *gin.Context) {
	start, ok := paramDate(c, "startDate")
	if !ok {
		return
	}
	report, err := rc.Reports.WeeklyReport(c.Request.Context(), start)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Weekly report", report)
}

// GetMonthlyReport -> satu bulan kalender, dengan rincian per minggu
func (rc *ReportController) GetMonthlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid year %q", c.Param("year")))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid month %q", c.Param("month")))
		return
	}
	report, err := rc.Reports.MonthlyReport(c.Request.Context(), year, time.Month(month), time.Local)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Monthly report", report)
}

// GetProductSales -> penjualan per produk antara dua tanggal (inklusif)
func (rc *ReportController) GetProductSales(c *gin.Context) {
	from, ok := paramDate(c, "startDate")
	if !ok {
		return
	}
	to, ok := paramDate(c, "endDate")
	if !ok {
		return
	}
	report, err := rc.Reports.ProductSales(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product sales report", report)
}

func paramDate(c *gin.Context, name string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, c.Param(name), time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, c.Param(name)))
		return time.Time{}, false
	}
	return t, true
}

func (rc *ReportController) load(c *gin.Context) (*services.DailyReport, bool) {
	day, ok := paramDate(c, "date")
	if !ok {
		return nil, false
	}
	report, err := rc.Reports.DailyReport(c.Request.Context(), day)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return report, true
}
