package service

import (
	"context"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Window names a date range for statistics queries.
type Window string

const (
	WindowTotal     Window = "total"
	WindowThisWeek  Window = "thisWeek"
	WindowThisMonth Window = "thisMonth"
)

// windowStart resolves a window to its inclusive lower bound in the local
// timezone: thisWeek starts at the most recent Monday 00:00, thisMonth at
// the 1st 00:00, total is unbounded (nil). An empty window means total.
func windowStart(w Window, now time.Time) (*time.Time, error) {
	now = now.Local()
	switch w {
	case WindowTotal, "":
		return nil, nil
	case WindowThisWeek:
		// Weekday() counts Sunday as 0; shift so Monday is day 0.
		offset := (int(now.Weekday()) + 6) % 7
		start := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
		return &start, nil
	case WindowThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &start, nil
	}
	return nil, validationErrorf("unknown window %q", w)
}

// startOfDay truncates a time to local midnight.
func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Summary aggregates a user's workouts for a status set and window.
type Summary struct {
	WorkoutCount       int     `json:"workoutCount"`
	TotalMinutes       int     `json:"totalMinutes"`
	AverageMinutes     float64 `json:"averageMinutes"`
	TotalSets          int64   `json:"totalSets"`
	AverageSetsPerWork float64 `json:"averageSetsPerWorkout"`
}

// --- Service Interface ---

type StatsService interface {
	Summary(ctx context.Context, ownerID primitive.ObjectID, statuses []domain.WorkoutStatus, window Window) (*Summary, error)
	Streak(ctx context.Context, ownerID primitive.ObjectID) (int, error)
}

// --- Service Implementation ---

type statsService struct {
	workoutRepo repository.WorkoutRepository
	now         func() time.Time
}

// NewStatsService creates a new instance of statsService.
func NewStatsService(workoutRepo repository.WorkoutRepository) StatsService {
	return &statsService{
		workoutRepo: workoutRepo,
		now:         time.Now,
	}
}

// Summary computes count, total/average duration and set totals over the
// user's workouts matching the status set and window. A user with zero
// matching workouts gets a zero summary, never a division error.
func (s *statsService) Summary(ctx context.Context, ownerID primitive.ObjectID, statuses []domain.WorkoutStatus, window Window) (*Summary, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	for _, status := range statuses {
		if !domain.ValidWorkoutStatus(status) {
			return nil, validationErrorf("unknown status %q", status)
		}
	}
	since, err := windowStart(window, s.now())
	if err != nil {
		return nil, err
	}

	workouts, err := s.workoutRepo.ListByOwner(ctx, ownerID, repository.WorkoutFilter{
		Statuses: statuses,
		Since:    since,
	})
	if err != nil {
		return nil, storageFailure("list workouts for summary", err)
	}

	summary := &Summary{WorkoutCount: len(workouts)}
	if len(workouts) == 0 {
		return summary, nil
	}

	workoutIDs := make([]primitive.ObjectID, len(workouts))
	for i, workout := range workouts {
		workoutIDs[i] = workout.ID
		if workout.DurationMinutes != nil {
			summary.TotalMinutes += *workout.DurationMinutes
		}
	}

	totalSets, err := s.workoutRepo.CountSetsByWorkoutIDs(ctx, workoutIDs)
	if err != nil {
		return nil, storageFailure("count sets for summary", err)
	}
	summary.TotalSets = totalSets
	summary.AverageMinutes = float64(summary.TotalMinutes) / float64(len(workouts))
	summary.AverageSetsPerWork = float64(totalSets) / float64(len(workouts))
	return summary, nil
}

// Streak counts strictly consecutive workout days ending today: the walk
// starts at today's date and steps back one day per counted workout,
// stopping at the first gap. A user whose latest workout was yesterday has a
// streak of 0. Multiple workouts on the same day count once.
//
// Note: this deliberately requires today to be included, which may differ
// from a "most recent consecutive run of workout days" reading; the current
// behavior is kept on purpose.
func (s *statsService) Streak(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	if ownerID == primitive.NilObjectID {
		return 0, ErrAccessDenied
	}

	workouts, err := s.workoutRepo.ListByOwner(ctx, ownerID, repository.WorkoutFilter{})
	if err != nil {
		return 0, storageFailure("list workouts for streak", err)
	}

	streak := 0
	expected := startOfDay(s.now())
	for _, workout := range workouts {
		day := startOfDay(workout.Date)
		if day.After(expected) {
			// Duplicate of an already counted day (or future-dated); skip.
			continue
		}
		if day.Equal(expected) {
			streak++
			expected = expected.AddDate(0, 0, -1)
			continue
		}
		break
	}
	return streak, nil
}
