package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRoutineService(f *fixture) RoutineService {
	return NewRoutineService(f.routines, f.tx, f.revalidator)
}

func TestCreateRoutineValidation(t *testing.T) {
	f := newFixture()
	svc := newRoutineService(f)
	owner := primitive.NewObjectID()

	tooShort := 10
	tooLong := 200
	ok := 45

	tests := []struct {
		name  string
		input CreateRoutineInput
	}{
		{"empty name", CreateRoutineInput{Category: domain.CategoryStrength, Difficulty: domain.DifficultyBeginner}},
		{"unknown category", CreateRoutineInput{Name: "A", Category: "cardio", Difficulty: domain.DifficultyBeginner}},
		{"unknown difficulty", CreateRoutineInput{Name: "A", Category: domain.CategoryStrength, Difficulty: "expert"}},
		{"duration too short", CreateRoutineInput{Name: "A", Category: domain.CategoryStrength, Difficulty: domain.DifficultyBeginner, EstimatedMinutes: &tooShort}},
		{"duration too long", CreateRoutineInput{Name: "A", Category: domain.CategoryStrength, Difficulty: domain.DifficultyBeginner, EstimatedMinutes: &tooLong}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner, tc.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	routine, err := svc.Create(context.Background(), owner, CreateRoutineInput{
		Name:             "Push Day",
		Category:         domain.CategoryHypertrophy,
		Difficulty:       domain.DifficultyIntermediate,
		EstimatedMinutes: &ok,
		Tags:             []string{"push"},
	})
	require.NoError(t, err)
	assert.True(t, routine.Active)
	assert.Equal(t, 45, *routine.EstimatedMinutes)
	assert.Empty(t, routine.TemplateKey, "hand-made routines have no template key")
}

func TestSeedCreatesOneRoutinePerTemplate(t *testing.T) {
	f := newFixture()
	svc := newRoutineService(f)
	owner := primitive.NewObjectID()

	created, err := svc.Seed(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, len(templates.Keys()), created)

	routines, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, routines, created)

	for _, routine := range routines {
		assert.NotEmpty(t, routine.TemplateKey)
		_, ok := templates.Get(routine.TemplateKey)
		assert.True(t, ok, "seeded routine must resolve to a template")
		assert.True(t, domain.ValidRoutineCategory(routine.Category))
		assert.True(t, domain.ValidDifficulty(routine.Difficulty))
	}
}

func TestSeedRollsBackOnFailure(t *testing.T) {
	f := newFixture()
	svc := newRoutineService(f)
	owner := primitive.NewObjectID()

	f.store.failCreate = errors.New("write failed")

	_, err := svc.Seed(context.Background(), owner)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, f.store.routines, "failed seed must leave no routines")
}

func TestDeleteRoutineOwnership(t *testing.T) {
	f := newFixture()
	svc := newRoutineService(f)
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	routine, err := svc.Create(context.Background(), owner, CreateRoutineInput{
		Name:       "Push Day",
		Category:   domain.CategoryStrength,
		Difficulty: domain.DifficultyBeginner,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), intruder, routine.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Len(t, f.store.routines, 1)

	err = svc.Delete(context.Background(), owner, routine.ID)
	require.NoError(t, err)
	assert.Empty(t, f.store.routines)

	err = svc.Delete(context.Background(), owner, routine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearOnlyRemovesOwnRoutines(t *testing.T) {
	f := newFixture()
	svc := newRoutineService(f)
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	_, err := svc.Seed(context.Background(), owner)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other, CreateRoutineInput{
		Name:       "Other's routine",
		Category:   domain.CategoryCustom,
		Difficulty: domain.DifficultyAdvanced,
	})
	require.NoError(t, err)

	deleted, err := svc.Clear(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(len(templates.Keys())), deleted)
	assert.Len(t, f.store.routines, 1)

	deleted, err = svc.Clear(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
