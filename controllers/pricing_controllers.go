package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type PricingController struct {
	Settings *services.SettingsService
}

func NewPricingController(svc *services.Services) *PricingController {
	return &PricingController{Settings: svc.Settings}
}

// OpenTimeCost -> hitung biaya open time; tarif dari settings kalau tidak dikirim
func (pc *PricingController) OpenTimeCost(c *gin.Context) {
	var req struct {
		ElapsedSeconds *int64   `json:"elapsedSeconds" binding:"required"`
		HourlyRate     *float64 `json:"hourlyRate"`
		HalfHourRate   *float64 `json:"halfHourRate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if *req.ElapsedSeconds < 0 {
		utils.RespondJSON(c, http.StatusBadRequest, "elapsedSeconds must not be negative", nil)
		return
	}

	rates, err := pc.Settings.Rates(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if req.HourlyRate != nil {
		rates.HourlyRate = *req.HourlyRate
	}
	if req.HalfHourRate != nil {
		rates.HalfHourRate = *req.HalfHourRate
	}
	utils.RespondJSON(c, http.StatusOK, "Open time cost", services.OpenTimeCost(*req.ElapsedSeconds, rates))
}
