package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

// RoutineHandler holds the routine service dependency.
type RoutineHandler struct {
	routineService service.RoutineService
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// --- Request/Response Structs ---

type CreateRoutineRequest struct {
	Name             string   `json:"name" binding:"required"`
	Category         string   `json:"category" binding:"required,oneof=strength hypertrophy endurance mixed custom"`
	Difficulty       string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	EstimatedMinutes *int     `json:"estimatedMinutes,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

type RoutineResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	TemplateKey      string    `json:"templateKey,omitempty"`
	Category         string    `json:"category"`
	Difficulty       string    `json:"difficulty"`
	EstimatedMinutes *int      `json:"estimatedMinutes,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
}

type seededCountResponse struct {
	Seeded int `json:"seeded"`
}

type deletedCountResponse struct {
	Deleted int64 `json:"deleted"`
}

// --- Handler Methods ---

// Create adds a hand-made routine.
func (h *RoutineHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.routineService.Create(c.Request.Context(), userID, service.CreateRoutineInput{
		Name:             req.Name,
		Category:         domain.RoutineCategory(req.Category),
		Difficulty:       domain.Difficulty(req.Difficulty),
		EstimatedMinutes: req.EstimatedMinutes,
		Tags:             req.Tags,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// Seed creates the caller's copy of the built-in routine templates.
func (h *RoutineHandler) Seed(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	seeded, err := h.routineService.Seed(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seededCountResponse{Seeded: seeded})
}

// List returns all routines the caller owns.
func (h *RoutineHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	routines, err := h.routineService.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]RoutineResponse, len(routines))
	for i := range routines {
		resp[i] = MapRoutineToResponse(&routines[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes one routine.
func (h *RoutineHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	if err := h.routineService.Delete(c.Request.Context(), userID, routineID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear removes every routine the caller owns.
func (h *RoutineHandler) Clear(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	deleted, err := h.routineService.Clear(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deletedCountResponse{Deleted: deleted})
}

// MapRoutineToResponse converts a domain Routine to its DTO.
func MapRoutineToResponse(routine *domain.Routine) RoutineResponse {
	if routine == nil {
		return RoutineResponse{}
	}
	return RoutineResponse{
		ID:               routine.ID.Hex(),
		Name:             routine.Name,
		TemplateKey:      routine.TemplateKey,
		Category:         string(routine.Category),
		Difficulty:       string(routine.Difficulty),
		EstimatedMinutes: routine.EstimatedMinutes,
		Tags:             routine.Tags,
		Active:           routine.Active,
		CreatedAt:        routine.CreatedAt,
	}
}
