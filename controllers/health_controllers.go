package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/utils"
)

// Health -> cek koneksi database
func Health(c *gin.Context) {
	if err := utils.PingDB(c.Request.Context()); err != nil {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{"database": "up"})
}
