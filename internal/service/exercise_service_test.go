package service

import (
	"context"
	"testing"

	"github.com/mxmkrg/fittrack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newExerciseService(f *fixture) ExerciseService {
	return NewExerciseService(f.exercises)
}

func TestGetExerciseByID(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)
	id := f.seedExercise("Bench Press", "Chest")

	exercise, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", exercise.Name)

	_, err = svc.GetByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchExercises(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)
	f.seedExercise("Bench Press", "Chest")
	f.seedExercise("Incline Bench Press", "Chest")
	f.seedExercise("Barbell Squat", "Legs")

	results, err := svc.Search(context.Background(), "bench", "")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.Search(context.Background(), "bench", "Legs")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.Search(context.Background(), "", "Legs")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Barbell Squat", results[0].Name)
}

func TestSearchMatchesMuscleGroups(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)
	_, err := f.exercises.Create(context.Background(), &domain.Exercise{
		Name:         "Romanian Deadlift",
		Category:     "Legs",
		MuscleGroups: []string{"Hamstrings", "Glutes"},
	})
	require.NoError(t, err)
	f.seedExercise("Bench Press", "Chest")

	results, err := svc.Search(context.Background(), "hamstrings", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Romanian Deadlift", results[0].Name)
}

func TestGroupedByCategory(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)
	f.seedExercise("Barbell Squat", "Legs")
	f.seedExercise("Bench Press", "Chest")
	f.seedExercise("Leg Press", "Legs")
	f.seedExercise("Mystery Move", "")

	groups, err := svc.GroupedByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// Alphabetical, uncategorized last.
	assert.Equal(t, "Chest", groups[0].Category)
	assert.Equal(t, "Legs", groups[1].Category)
	assert.Equal(t, "Uncategorized", groups[2].Category)
	assert.Len(t, groups[1].Exercises, 2)
}

func TestFindOrCreateByName(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)

	first, err := svc.FindOrCreateByName(context.Background(), "  Deadlift ")
	require.NoError(t, err)
	assert.Equal(t, "Deadlift", first.Name)

	second, err := svc.FindOrCreateByName(context.Background(), "Deadlift")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same name must resolve to the same entry")
	assert.Len(t, f.store.exercises, 1)

	_, err = svc.FindOrCreateByName(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	f := newFixture()
	svc := newExerciseService(f)

	entries := []domain.Exercise{
		{Name: "Bench Press", Category: "Chest"},
		{Name: "Barbell Squat", Category: "Legs"},
	}

	n, err := svc.SeedCatalog(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.store.exercises, 2)

	// Re-running updates in place instead of duplicating.
	entries[0].Description = "press from the chest"
	_, err = svc.SeedCatalog(context.Background(), entries)
	require.NoError(t, err)
	assert.Len(t, f.store.exercises, 2)

	results, err := svc.Search(context.Background(), "Bench Press", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "press from the chest", results[0].Description)
}
