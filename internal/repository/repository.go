package repository

import (
	"context"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner executes a function inside one atomic unit. Every write issued
// through the callback's context commits together or not at all. Multi-row
// operations (plan a workout with nested exercises/sets, clear all workouts,
// clear routines, delete an account) must go through this so a partial
// failure leaves no orphaned child rows.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProfileRepository defines the interface for the optional 1:1 user profile.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error)
	// Upsert replaces the questionnaire fields, leaving the avatar key alone.
	Upsert(ctx context.Context, profile *domain.UserProfile) error
	SetAvatarKey(ctx context.Context, userID primitive.ObjectID, key string) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the global exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	// FindOrCreateByName resolves a catalog entry by exact name, inserting it
	// if absent. Implementations must make this atomic (upsert against a
	// unique name index) so concurrent callers cannot create duplicates.
	FindOrCreateByName(ctx context.Context, name string) (*domain.Exercise, error)
	// UpsertByName inserts or refreshes a fully described catalog entry,
	// keyed by name. Used by seeding.
	UpsertByName(ctx context.Context, exercise *domain.Exercise) error
	Search(ctx context.Context, query, category string) ([]domain.Exercise, error)
}

// RoutineRepository defines the interface for interacting with routine data.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// WorkoutFilter narrows workout list queries. A nil Since/Before leaves that
// bound open; an empty Statuses slice matches every status.
type WorkoutFilter struct {
	Statuses []domain.WorkoutStatus
	Since    *time.Time
	Before   *time.Time
}

// WorkoutRepository defines the interface for workouts and their descendant
// exercises and sets. Children live in their own collections; deletion order
// (sets, then exercises, then the workout) is the caller's responsibility.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// ListByOwner returns the owner's workouts matching the filter, sorted by
	// date descending.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, filter WorkoutFilter) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddExercise(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error)
	AddSet(ctx context.Context, ws *domain.WorkoutSet) (primitive.ObjectID, error)
	GetExercises(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	GetSets(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error)
	DeleteSetsByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error
	DeleteExercisesByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error

	// CountSetsByWorkoutIDs returns the total number of sets across the given
	// workouts, for statistics.
	CountSetsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) (int64, error)
}
