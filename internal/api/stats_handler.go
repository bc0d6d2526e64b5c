package api

import (
	"net/http"
	"strings"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler holds the stats service dependency.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

type streakResponse struct {
	Streak int `json:"streak"`
}

// Summary returns aggregate workout statistics for the caller. Accepts the
// same status and window query parameters as the workout list.
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var statuses []domain.WorkoutStatus
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, domain.WorkoutStatus(s))
			}
		}
	}
	window := service.Window(c.Query("window"))

	summary, err := h.statsService.Summary(c.Request.Context(), userID, statuses, window)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Streak returns the caller's consecutive workout-day streak ending today.
func (h *StatsHandler) Streak(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	streak, err := h.statsService.Streak(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, streakResponse{Streak: streak})
}
