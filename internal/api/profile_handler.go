package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request/Response Structs ---

type UpsertProfileRequest struct {
	Age            *int     `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	HeightCM       *float64 `json:"heightCm,omitempty"`
	WeightKG       *float64 `json:"weightKg,omitempty"`
	Goal           string   `json:"goal,omitempty"`
	DaysPerWeek    *int     `json:"daysPerWeek,omitempty"`
	SessionMinutes *int     `json:"sessionMinutes,omitempty"`
	Limitations    []string `json:"limitations,omitempty"`
}

type ProfileResponse struct {
	UserID         string    `json:"userId"`
	Age            *int      `json:"age,omitempty"`
	Gender         string    `json:"gender,omitempty"`
	HeightCM       *float64  `json:"heightCm,omitempty"`
	WeightKG       *float64  `json:"weightKg,omitempty"`
	Goal           string    `json:"goal,omitempty"`
	DaysPerWeek    *int      `json:"daysPerWeek,omitempty"`
	SessionMinutes *int      `json:"sessionMinutes,omitempty"`
	Limitations    []string  `json:"limitations,omitempty"`
	HasAvatar      bool      `json:"hasAvatar"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// Get returns the caller's profile, empty if never saved.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// Upsert saves the caller's questionnaire answers.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.Upsert(c.Request.Context(), userID, service.UpsertProfileInput{
		Age:            req.Age,
		Gender:         req.Gender,
		HeightCM:       req.HeightCM,
		WeightKG:       req.WeightKG,
		Goal:           req.Goal,
		DaysPerWeek:    req.DaysPerWeek,
		SessionMinutes: req.SessionMinutes,
		Limitations:    req.Limitations,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// RequestAvatarUpload hands out a presigned PUT URL for the caller's avatar.
func (h *ProfileHandler) RequestAvatarUpload(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	target, err := h.profileService.RequestAvatarUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// ConfirmAvatar records the uploaded avatar object key.
func (h *ProfileHandler) ConfirmAvatar(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.profileService.ConfirmAvatar(c.Request.Context(), userID, req.ObjectKey); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvatarURL returns a presigned GET URL for the caller's avatar.
func (h *ProfileHandler) AvatarURL(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	url, err := h.profileService.AvatarDownloadURL(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// RequestProgressPhotoUpload hands out a presigned PUT URL for a progress
// photo.
func (h *ProfileHandler) RequestProgressPhotoUpload(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	target, err := h.profileService.RequestProgressPhotoUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// MapProfileToResponse converts a domain UserProfile to its DTO.
func MapProfileToResponse(profile *domain.UserProfile) ProfileResponse {
	if profile == nil {
		return ProfileResponse{}
	}
	return ProfileResponse{
		UserID:         profile.UserID.Hex(),
		Age:            profile.Age,
		Gender:         profile.Gender,
		HeightCM:       profile.HeightCM,
		WeightKG:       profile.WeightKG,
		Goal:           profile.Goal,
		DaysPerWeek:    profile.DaysPerWeek,
		SessionMinutes: profile.SessionMinutes,
		Limitations:    profile.Limitations,
		HasAvatar:      profile.AvatarKey != "",
		UpdatedAt:      profile.UpdatedAt,
	}
}
