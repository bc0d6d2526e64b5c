package api

import (
	"net/http"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request/Response Structs ---

type ExerciseResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	MuscleGroups []string  `json:"muscleGroups,omitempty"`
	Equipment    string    `json:"equipment,omitempty"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CategoryGroupResponse struct {
	Category  string             `json:"category"`
	Exercises []ExerciseResponse `json:"exercises"`
}

type SeedExerciseRequest struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category,omitempty"`
	MuscleGroups []string `json:"muscleGroups,omitempty"`
	Equipment    string   `json:"equipment,omitempty"`
	Description  string   `json:"description,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

// --- Handler Methods ---

// Search filters the catalog by query and optional category. Without a query
// it returns everything, grouped or flat depending on the grouped flag.
func (h *ExerciseHandler) Search(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")

	if query == "" && category == "" && c.Query("grouped") == "true" {
		groups, err := h.exerciseService.GroupedByCategory(c.Request.Context())
		if err != nil {
			handleServiceError(c, err)
			return
		}
		resp := make([]CategoryGroupResponse, len(groups))
		for i, group := range groups {
			resp[i] = CategoryGroupResponse{
				Category:  group.Category,
				Exercises: mapExercisesToResponse(group.Exercises),
			}
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	exercises, err := h.exerciseService.Search(c.Request.Context(), query, category)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapExercisesToResponse(exercises))
}

// Get returns one catalog exercise by ID.
func (h *ExerciseHandler) Get(c *gin.Context) {
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetByID(c.Request.Context(), exerciseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// Seed upserts catalog entries by name. Admin only.
func (h *ExerciseHandler) Seed(c *gin.Context) {
	var reqs []SeedExerciseRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		abortWithError(c, http.StatusBadRequest, "Request body must be an array of exercises")
		return
	}

	entries := make([]domain.Exercise, len(reqs))
	for i, req := range reqs {
		entries[i] = domain.Exercise{
			Name:         req.Name,
			Category:     req.Category,
			MuscleGroups: req.MuscleGroups,
			Equipment:    req.Equipment,
			Description:  req.Description,
			Instructions: req.Instructions,
		}
	}

	n, err := h.exerciseService.SeedCatalog(c.Request.Context(), entries)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": n})
}

// MapExerciseToResponse converts a domain Exercise to its DTO.
func MapExerciseToResponse(exercise *domain.Exercise) ExerciseResponse {
	if exercise == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:           exercise.ID.Hex(),
		Name:         exercise.Name,
		Category:     exercise.Category,
		MuscleGroups: exercise.MuscleGroups,
		Equipment:    exercise.Equipment,
		Description:  exercise.Description,
		Instructions: exercise.Instructions,
		CreatedAt:    exercise.CreatedAt,
	}
}

func mapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	resp := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		resp[i] = MapExerciseToResponse(&exercises[i])
	}
	return resp
}
