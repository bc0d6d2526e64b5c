package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for the workout lifecycle
type WorkoutStatus string

const (
	StatusPlanned   WorkoutStatus = "planned"
	StatusActive    WorkoutStatus = "active"
	StatusCompleted WorkoutStatus = "completed"
	StatusArchived  WorkoutStatus = "archived"
)

// ValidWorkoutStatus reports whether s is one of the four known statuses.
func ValidWorkoutStatus(s WorkoutStatus) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether a workout may move from one status to
// another. The lifecycle is one-directional (planned → active → completed →
// archived) with unarchive (archived → completed) as the only reverse edge.
// Every lifecycle operation goes through this table instead of comparing
// status strings inline.
func CanTransition(from, to WorkoutStatus) bool {
	switch from {
	case StatusPlanned:
		return to == StatusActive
	case StatusActive:
		return to == StatusCompleted
	case StatusCompleted:
		return to == StatusArchived
	case StatusArchived:
		return to == StatusCompleted
	}
	return false
}

// Workout is the central mutable entity: one training session, planned or
// performed, owned by a single user. It owns an ordered list of
// WorkoutExercise children which in turn own WorkoutSets. MongoDB does not
// cascade deletes across collections, so any operation removing a workout
// must remove sets, then exercises, then the workout itself.
type Workout struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name            string             `bson:"name" json:"name"`
	Status          WorkoutStatus      `bson:"status" json:"status"`
	Date            time.Time          `bson:"date" json:"date"`
	DurationMinutes *int               `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise binds a workout to a catalog exercise. Order is zero-based
// and defines display and processing sequence within the workout; it is
// contiguous by convention, not enforced by the storage layer.
type WorkoutExercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutSet is the leaf entity: one set of one exercise in one workout.
// SetNumber is 1-based and unique within its WorkoutExercise by convention.
type WorkoutSet struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutExerciseID primitive.ObjectID `bson:"workoutExerciseId" json:"workoutExerciseId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"`
	TargetReps        int                `bson:"targetReps" json:"targetReps"`
	TargetWeight      *float64           `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	ActualWeight      *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	Completed         bool               `bson:"completed" json:"completed"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
}
