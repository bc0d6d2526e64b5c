package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"
	"github.com/mxmkrg/fittrack/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpsertProfileInput carries the editable profile fields. Nil pointers leave
// the corresponding answer unset.
type UpsertProfileInput struct {
	Age            *int
	Gender         string
	HeightCM       *float64
	WeightKG       *float64
	Goal           string
	DaysPerWeek    *int
	SessionMinutes *int
	Limitations    []string
}

// UploadTarget is a presigned upload slot handed to the client.
type UploadTarget struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

// --- Service Interface ---

type ProfileService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	Upsert(ctx context.Context, userID primitive.ObjectID, input UpsertProfileInput) (*domain.UserProfile, error)
	// RequestAvatarUpload returns a presigned PUT URL for the user's avatar.
	// The client uploads directly to storage and then calls ConfirmAvatar
	// with the returned object key.
	RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadTarget, error)
	ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) error
	AvatarDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error)
	// RequestProgressPhotoUpload returns a presigned PUT URL for a dated
	// progress photo. Photos are client-managed; the API never lists them.
	RequestProgressPhotoUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadTarget, error)
}

// --- Service Implementation ---

type profileService struct {
	profileRepo repository.ProfileRepository
	fileStorage storage.FileStorage
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(profileRepo repository.ProfileRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		fileStorage: fileStorage,
	}
}

// Get returns the user's profile, or an empty one if none was saved yet.
func (s *profileService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.UserProfile{UserID: userID}, nil
		}
		return nil, storageFailure("get profile", err)
	}
	return profile, nil
}

// Upsert validates and saves the profile answers, creating the profile row on
// first write.
func (s *profileService) Upsert(ctx context.Context, userID primitive.ObjectID, input UpsertProfileInput) (*domain.UserProfile, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserID:         userID,
		Age:            input.Age,
		Gender:         strings.TrimSpace(input.Gender),
		HeightCM:       input.HeightCM,
		WeightKG:       input.WeightKG,
		Goal:           strings.TrimSpace(input.Goal),
		DaysPerWeek:    input.DaysPerWeek,
		SessionMinutes: input.SessionMinutes,
		Limitations:    input.Limitations,
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, storageFailure("upsert profile", err)
	}

	saved, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageFailure("reload profile", err)
	}
	return saved, nil
}

func validateProfileInput(input UpsertProfileInput) error {
	if input.Age != nil && (*input.Age < 13 || *input.Age > 120) {
		return validationErrorf("age must be between 13 and 120")
	}
	if input.HeightCM != nil && (*input.HeightCM < 50 || *input.HeightCM > 300) {
		return validationErrorf("heightCm must be between 50 and 300")
	}
	if input.WeightKG != nil && (*input.WeightKG < 20 || *input.WeightKG > 500) {
		return validationErrorf("weightKg must be between 20 and 500")
	}
	if input.DaysPerWeek != nil && (*input.DaysPerWeek < 1 || *input.DaysPerWeek > 7) {
		return validationErrorf("daysPerWeek must be between 1 and 7")
	}
	if input.SessionMinutes != nil && (*input.SessionMinutes < 10 || *input.SessionMinutes > 300) {
		return validationErrorf("sessionMinutes must be between 10 and 300")
	}
	return nil
}

// extensionForContentType restricts uploads to common image types.
func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	}
	return "", validationErrorf("contentType must be image/jpeg, image/png or image/webp")
}

// RequestAvatarUpload issues a presigned PUT URL under the user's avatar
// prefix. The key embeds a random UUID so a re-upload never collides with a
// cached older object.
func (s *profileService) RequestAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadTarget, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("avatars/%s/%s.%s", userID.Hex(), uuid.NewString(), ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, storageFailure("generate avatar upload URL", err)
	}
	return &UploadTarget{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}

// ConfirmAvatar records the uploaded object key on the profile and deletes
// the previous avatar, if any.
func (s *profileService) ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) error {
	if userID == primitive.NilObjectID {
		return ErrAccessDenied
	}
	// Only keys issued for this user are acceptable.
	if !strings.HasPrefix(objectKey, "avatars/"+userID.Hex()+"/") {
		return validationErrorf("objectKey does not belong to this user")
	}

	previous := ""
	if existing, err := s.profileRepo.GetByUserID(ctx, userID); err == nil {
		previous = existing.AvatarKey
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storageFailure("get profile", err)
	}

	if err := s.profileRepo.SetAvatarKey(ctx, userID, objectKey); err != nil {
		return storageFailure("save avatar key", err)
	}

	if previous != "" && previous != objectKey {
		// Cleanup of the old object is best-effort; the key is already
		// replaced.
		_ = s.fileStorage.DeleteObject(ctx, previous)
	}
	return nil
}

// AvatarDownloadURL returns a presigned GET URL for the stored avatar.
func (s *profileService) AvatarDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if userID == primitive.NilObjectID {
		return "", ErrAccessDenied
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", storageFailure("get profile", err)
	}
	if profile.AvatarKey == "" {
		return "", ErrNotFound
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, profile.AvatarKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", storageFailure("generate avatar download URL", err)
	}
	return url, nil
}

// RequestProgressPhotoUpload issues a presigned PUT URL under the user's
// progress-photo prefix.
func (s *profileService) RequestProgressPhotoUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*UploadTarget, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("progress/%s/%s.%s", userID.Hex(), uuid.NewString(), ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, storageFailure("generate progress photo upload URL", err)
	}
	return &UploadTarget{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}
