package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type SessionController struct {
	Sessions *services.SessionService
}

func NewSessionController(svc *services.Services) *SessionController {
	return &SessionController{Sessions: svc.Sessions}
}

// GetSessions -> riwayat sesi, filter from/to/table_id
func (sc *SessionController) GetSessions(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	filter := services.SessionFilter{From: from, To: endOfDay(c.Query("to"), to)}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid table_id %q", raw))
			return
		}
		tableID := uint(id)
		filter.TableID = &tableID
	}

	sessions, err := sc.Sessions.ListSessions(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sessions", sessions)
}

func (sc *SessionController) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	session, err := sc.Sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}
