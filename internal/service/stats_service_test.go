package service

import (
	"context"
	"testing"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStatsService(f *fixture) *statsService {
	svc := NewStatsService(f.workouts)
	return svc.(*statsService)
}

func TestSummaryZeroWorkouts(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)

	summary, err := svc.Summary(context.Background(), primitive.NewObjectID(), nil, WindowTotal)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.WorkoutCount)
	assert.Equal(t, 0, summary.TotalMinutes)
	assert.Zero(t, summary.AverageMinutes)
	assert.Zero(t, summary.AverageSetsPerWork)
}

func TestSummaryAggregatesDurations(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for _, minutes := range []int{30, 60} {
		id := f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -1))
		w := f.store.workouts[id]
		m := minutes
		w.DurationMinutes = &m
		f.store.workouts[id] = w
	}
	// A workout without a recorded duration still counts.
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -2))

	summary, err := svc.Summary(context.Background(), owner, []domain.WorkoutStatus{domain.StatusCompleted}, WindowTotal)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.WorkoutCount)
	assert.Equal(t, 90, summary.TotalMinutes)
	assert.InDelta(t, 30.0, summary.AverageMinutes, 0.001)
}

func TestSummaryCountsSets(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	workoutID := f.seedWorkout(owner, domain.StatusCompleted, time.Now())
	weID, err := f.workouts.AddExercise(context.Background(), &domain.WorkoutExercise{WorkoutID: workoutID})
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, err := f.workouts.AddSet(context.Background(), &domain.WorkoutSet{WorkoutExerciseID: weID, SetNumber: i, TargetReps: 5})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(context.Background(), owner, nil, WindowTotal)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalSets)
	assert.InDelta(t, 4.0, summary.AverageSetsPerWork, 0.001)
}

func TestSummaryRejectsUnknownWindow(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)

	_, err := svc.Summary(context.Background(), primitive.NewObjectID(), nil, Window("lastDecade"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWindowStart(t *testing.T) {
	// Wednesday noon.
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)

	start, err := windowStart(WindowThisWeek, now)
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local), *start)

	// A Monday is its own week start.
	monday := time.Date(2026, 8, 24, 8, 0, 0, 0, time.Local)
	start, err = windowStart(WindowThisWeek, monday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local), *start)

	start, err = windowStart(WindowThisMonth, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), *start)

	start, err = windowStart(WindowTotal, now)
	require.NoError(t, err)
	assert.Nil(t, start)

	start, err = windowStart("", now)
	require.NoError(t, err)
	assert.Nil(t, start)
}

func TestStreakConsecutiveDays(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	f.seedWorkout(owner, domain.StatusCompleted, now)
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -1))
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -2))

	streak, err := svc.Streak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestStreakBreaksOnGap(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	f.seedWorkout(owner, domain.StatusCompleted, now)
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -2))

	streak, err := svc.Streak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestStreakRequiresWorkoutToday(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -1))
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -2))

	streak, err := svc.Streak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestStreakCountsDuplicateDaysOnce(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)
	owner := primitive.NewObjectID()

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	f.seedWorkout(owner, domain.StatusCompleted, now)
	f.seedWorkout(owner, domain.StatusCompleted, now.Add(-2*time.Hour))
	f.seedWorkout(owner, domain.StatusCompleted, now.AddDate(0, 0, -1))

	streak, err := svc.Streak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestStreakEmptyHistory(t *testing.T) {
	f := newFixture()
	svc := newStatsService(f)

	streak, err := svc.Streak(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}
