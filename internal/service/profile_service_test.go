package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeFileStorage records object keys and hands out deterministic URLs.
type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func newProfileService(f *fixture, files *fakeFileStorage) ProfileService {
	return NewProfileService(f.profiles, files)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestProfileGetBeforeFirstSave(t *testing.T) {
	f := newFixture()
	svc := newProfileService(f, &fakeFileStorage{})
	userID := primitive.NewObjectID()

	profile, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.Nil(t, profile.Age)
}

func TestProfileUpsertValidation(t *testing.T) {
	f := newFixture()
	svc := newProfileService(f, &fakeFileStorage{})
	userID := primitive.NewObjectID()

	tests := []struct {
		name  string
		input UpsertProfileInput
	}{
		{"age too low", UpsertProfileInput{Age: intPtr(5)}},
		{"age too high", UpsertProfileInput{Age: intPtr(150)}},
		{"height out of range", UpsertProfileInput{HeightCM: floatPtr(10)}},
		{"weight out of range", UpsertProfileInput{WeightKG: floatPtr(600)}},
		{"days per week zero", UpsertProfileInput{DaysPerWeek: intPtr(0)}},
		{"days per week eight", UpsertProfileInput{DaysPerWeek: intPtr(8)}},
		{"session too short", UpsertProfileInput{SessionMinutes: intPtr(5)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), userID, tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	saved, err := svc.Upsert(context.Background(), userID, UpsertProfileInput{
		Age:            intPtr(30),
		Gender:         "female",
		HeightCM:       floatPtr(170),
		WeightKG:       floatPtr(65),
		Goal:           "strength",
		DaysPerWeek:    intPtr(4),
		SessionMinutes: intPtr(60),
		Limitations:    []string{"left knee"},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, *saved.Age)
	assert.Equal(t, "strength", saved.Goal)
}

func TestAvatarUploadFlow(t *testing.T) {
	f := newFixture()
	files := &fakeFileStorage{}
	svc := newProfileService(f, files)
	userID := primitive.NewObjectID()

	_, err := svc.RequestAvatarUpload(context.Background(), userID, "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)

	target, err := svc.RequestAvatarUpload(context.Background(), userID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target.ObjectKey, "avatars/"+userID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(target.ObjectKey, ".png"))
	assert.Contains(t, target.UploadURL, target.ObjectKey)

	// A key issued for a different user is rejected.
	err = svc.ConfirmAvatar(context.Background(), userID, "avatars/"+primitive.NewObjectID().Hex()+"/x.png")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.ConfirmAvatar(context.Background(), userID, target.ObjectKey))

	url, err := svc.AvatarDownloadURL(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, url, target.ObjectKey)

	// Replacing the avatar deletes the previous object.
	second, err := svc.RequestAvatarUpload(context.Background(), userID, "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmAvatar(context.Background(), userID, second.ObjectKey))
	assert.Equal(t, []string{target.ObjectKey}, files.deleted)
}

func TestAvatarConfirmKeepsQuestionnaire(t *testing.T) {
	f := newFixture()
	svc := newProfileService(f, &fakeFileStorage{})
	userID := primitive.NewObjectID()

	_, err := svc.Upsert(context.Background(), userID, UpsertProfileInput{Age: intPtr(30)})
	require.NoError(t, err)

	target, err := svc.RequestAvatarUpload(context.Background(), userID, "image/png")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmAvatar(context.Background(), userID, target.ObjectKey))

	profile, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, profile.Age, "avatar confirm must not wipe answers")
	assert.Equal(t, 30, *profile.Age)
	assert.Equal(t, target.ObjectKey, profile.AvatarKey)

	// And saving answers again must not wipe the avatar.
	_, err = svc.Upsert(context.Background(), userID, UpsertProfileInput{Age: intPtr(31)})
	require.NoError(t, err)
	profile, err = svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, target.ObjectKey, profile.AvatarKey)
}

func TestAvatarDownloadWithoutAvatar(t *testing.T) {
	f := newFixture()
	svc := newProfileService(f, &fakeFileStorage{})

	_, err := svc.AvatarDownloadURL(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProgressPhotoUpload(t *testing.T) {
	f := newFixture()
	svc := newProfileService(f, &fakeFileStorage{})
	userID := primitive.NewObjectID()

	target, err := svc.RequestProgressPhotoUpload(context.Background(), userID, "image/webp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target.ObjectKey, "progress/"+userID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(target.ObjectKey, ".webp"))
}
