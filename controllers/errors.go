package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

const dateLayout = "2006-01-02"

// respondServiceError memetakan error domain ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondErrorData(c, http.StatusConflict, err, gin.H{"shortfalls": services.ShortfallsOf(err)})
	case errors.As(err, &validation):
		utils.RespondErrorData(c, http.StatusBadRequest, err, gin.H{"field": validation.Field})
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidState):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// paramID parses a positive integer path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// queryDate parses an optional YYYY-MM-DD (or RFC3339) query value.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, raw))
		return nil, false
	}
	return &t, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// endOfDay turns a date-only upper bound into an exclusive bound on the next day.
func endOfDay(raw string, t *time.Time) *time.Time {
	if t == nil || len(raw) != len(dateLayout) {
		return t
	}
	next := t.AddDate(0, 0, 1)
	return &next
}
