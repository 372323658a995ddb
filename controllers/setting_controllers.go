package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type SettingController struct {
	Settings *services.SettingsService
}

func NewSettingController(svc *services.Services) *SettingController {
	return &SettingController{Settings: svc.Settings}
}

// GetSettings -> tarif aktif dan semua key/value
func (sc *SettingController) GetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	rates, err := sc.Settings.Rates(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	all, err := sc.Settings.All(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", gin.H{
		"hourlyRate":   rates.HourlyRate,
		"halfHourRate": rates.HalfHourRate,
		"values":       all,
	})
}

func (sc *SettingController) SaveSettings(c *gin.Context) {
	var req services.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sc.Settings.Save(c.Request.Context(), req); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings saved", req)
}
