package api

import (
	"fmt"
	"net/http"

	"github.com/mxmkrg/fittrack/internal/coach"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

// CoachHandler holds the coach service dependency.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- Request/Response Structs ---

type ChatMessageRequest struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatRequest struct {
	Message string               `json:"message" binding:"required"`
	History []ChatMessageRequest `json:"history,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// --- Handler Methods ---

// Chat forwards the caller's message and conversation history to the coaching
// text provider. The provider is optional; without one the endpoint reports
// 503 instead of being unregistered, so clients get a clear signal.
func (h *CoachHandler) Chat(c *gin.Context) {
	if h.coachService == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Coaching is not configured")
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	history := make([]coach.Message, len(req.History))
	for i, m := range req.History {
		history[i] = coach.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := h.coachService.Chat(c.Request.Context(), userID, history, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}
