package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type PlanSetRequest struct {
	Reps         int      `json:"reps" binding:"required,min=1"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type PlanExerciseRequest struct {
	ExerciseID string           `json:"exerciseId" binding:"required"`
	Notes      string           `json:"notes,omitempty"`
	Sets       []PlanSetRequest `json:"sets"`
}

type PlanWorkoutRequest struct {
	Name      string                `json:"name" binding:"required"`
	Date      *time.Time            `json:"date,omitempty"`
	Notes     string                `json:"notes,omitempty"`
	Exercises []PlanExerciseRequest `json:"exercises"`
}

// UpdateWorkoutRequest is a partial update; absent fields are left untouched.
// A non-null exercises array replaces the whole exercise/set subtree.
type UpdateWorkoutRequest struct {
	Name      *string               `json:"name,omitempty"`
	Notes     *string               `json:"notes,omitempty"`
	Exercises []PlanExerciseRequest `json:"exercises,omitempty"`
}

type WorkoutResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Status          domain.WorkoutStatus `json:"status"`
	Date            time.Time            `json:"date"`
	DurationMinutes *int                 `json:"durationMinutes,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type WorkoutSetResponse struct {
	ID           string   `json:"id"`
	SetNumber    int      `json:"setNumber"`
	TargetReps   int      `json:"targetReps"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
	ActualWeight *float64 `json:"actualWeight,omitempty"`
	Completed    bool     `json:"completed"`
	Notes        string   `json:"notes,omitempty"`
}

type WorkoutExerciseResponse struct {
	ID           string               `json:"id"`
	ExerciseID   string               `json:"exerciseId"`
	ExerciseName string               `json:"exerciseName,omitempty"`
	Category     string               `json:"category,omitempty"`
	Order        int                  `json:"order"`
	Notes        string               `json:"notes,omitempty"`
	Sets         []WorkoutSetResponse `json:"sets"`
}

type WorkoutDetailsResponse struct {
	WorkoutResponse
	Exercises []WorkoutExerciseResponse `json:"exercises"`
}

type archivedCountResponse struct {
	Archived int `json:"archived"`
}

type clearedCountResponse struct {
	Cleared int `json:"cleared"`
}

// --- Handler Methods ---

// Plan creates a planned workout with its nested exercises and sets.
func (h *WorkoutHandler) Plan(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req PlanWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input, err := mapPlanRequest(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.Plan(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// List returns the caller's workouts, optionally filtered by status (repeated
// or comma-separated) and window (total, thisWeek, thisMonth).
func (h *WorkoutHandler) List(c *gin.Context) {
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

	workouts, err := h.workoutService.List(c.Request.Context(), userID, statuses, window)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns one workout with its full exercise/set subtree.
func (h *WorkoutHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	details, err := h.workoutService.Get(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutDetailsToResponse(details))
}

// Update patches name/notes and optionally replaces the exercise subtree.
func (h *WorkoutHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.UpdateWorkoutInput{Name: req.Name, Notes: req.Notes}
	if req.Exercises != nil {
		exercises, err := mapPlanExercises(req.Exercises)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		input.Exercises = exercises
	}

	workout, err := h.workoutService.Update(c.Request.Context(), userID, workoutID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// Delete removes one workout with its subtree.
func (h *WorkoutHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, workoutID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAll removes every workout the caller owns.
func (h *WorkoutHandler) ClearAll(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	cleared, err := h.workoutService.ClearAll(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, clearedCountResponse{Cleared: cleared})
}

// Start moves a planned workout to active.
func (h *WorkoutHandler) Start(c *gin.Context) {
	h.transition(c, h.workoutService.Start)
}

// Complete moves an active workout to completed.
func (h *WorkoutHandler) Complete(c *gin.Context) {
	h.transition(c, h.workoutService.Complete)
}

// Archive moves a completed workout to archived.
func (h *WorkoutHandler) Archive(c *gin.Context) {
	h.transition(c, h.workoutService.Archive)
}

// Unarchive restores an archived workout to completed.
func (h *WorkoutHandler) Unarchive(c *gin.Context) {
	h.transition(c, h.workoutService.Unarchive)
}

func (h *WorkoutHandler) transition(c *gin.Context, op func(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	workout, err := op(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// ArchiveOld archives completed workouts older than one year.
func (h *WorkoutHandler) ArchiveOld(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	archived, err := h.workoutService.ArchiveOld(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, archivedCountResponse{Archived: archived})
}

// StartFromRoutine materializes a routine into a new active workout.
func (h *WorkoutHandler) StartFromRoutine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	routineID, ok := pathObjectID(c, "routineId")
	if !ok {
		return
	}

	workout, err := h.workoutService.StartFromRoutine(c.Request.Context(), userID, routineID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// --- Mapping Helpers ---

func mapPlanRequest(req PlanWorkoutRequest) (service.PlanWorkoutInput, error) {
	exercises, err := mapPlanExercises(req.Exercises)
	if err != nil {
		return service.PlanWorkoutInput{}, err
	}
	input := service.PlanWorkoutInput{
		Name:      req.Name,
		Notes:     req.Notes,
		Exercises: exercises,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}
	return input, nil
}

func mapPlanExercises(reqs []PlanExerciseRequest) ([]service.PlanExerciseInput, error) {
	exercises := make([]service.PlanExerciseInput, len(reqs))
	for i, ex := range reqs {
		exerciseID, err := primitive.ObjectIDFromHex(ex.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("exercises[%d]: invalid exercise id", i)
		}
		sets := make([]service.PlanSetInput, len(ex.Sets))
		for j, set := range ex.Sets {
			sets[j] = service.PlanSetInput{
				Reps:         set.Reps,
				TargetWeight: set.TargetWeight,
				Notes:        set.Notes,
			}
		}
		exercises[i] = service.PlanExerciseInput{
			ExerciseID: exerciseID,
			Notes:      ex.Notes,
			Sets:       sets,
		}
	}
	return exercises, nil
}

// MapWorkoutToResponse converts a domain Workout to its DTO.
func MapWorkoutToResponse(workout *domain.Workout) WorkoutResponse {
	if workout == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:              workout.ID.Hex(),
		Name:            workout.Name,
		Status:          workout.Status,
		Date:            workout.Date,
		DurationMinutes: workout.DurationMinutes,
		Notes:           workout.Notes,
		CreatedAt:       workout.CreatedAt,
		UpdatedAt:       workout.UpdatedAt,
	}
}

// MapWorkoutDetailsToResponse converts a joined workout subtree to its DTO.
func MapWorkoutDetailsToResponse(details *service.WorkoutDetails) WorkoutDetailsResponse {
	resp := WorkoutDetailsResponse{
		WorkoutResponse: MapWorkoutToResponse(&details.Workout),
		Exercises:       make([]WorkoutExerciseResponse, 0, len(details.Exercises)),
	}
	for _, ex := range details.Exercises {
		exResp := WorkoutExerciseResponse{
			ID:         ex.ID.Hex(),
			ExerciseID: ex.ExerciseID.Hex(),
			Order:      ex.Order,
			Notes:      ex.Notes,
			Sets:       make([]WorkoutSetResponse, 0, len(ex.Sets)),
		}
		if ex.Exercise != nil {
			exResp.ExerciseName = ex.Exercise.Name
			exResp.Category = ex.Exercise.Category
		}
		for _, set := range ex.Sets {
			exResp.Sets = append(exResp.Sets, WorkoutSetResponse{
				ID:           set.ID.Hex(),
				SetNumber:    set.SetNumber,
				TargetReps:   set.TargetReps,
				TargetWeight: set.TargetWeight,
				ActualWeight: set.ActualWeight,
				Completed:    set.Completed,
				Notes:        set.Notes,
			})
		}
		resp.Exercises = append(resp.Exercises, exResp)
	}
	return resp
}
