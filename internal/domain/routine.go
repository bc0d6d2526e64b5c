package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineCategory classifies what a routine trains for.
type RoutineCategory string

const (
	CategoryStrength    RoutineCategory = "strength"
	CategoryHypertrophy RoutineCategory = "hypertrophy"
	CategoryEndurance   RoutineCategory = "endurance"
	CategoryMixed       RoutineCategory = "mixed"
	CategoryCustom      RoutineCategory = "custom"
)

// ValidRoutineCategory reports whether c is one of the closed category set.
func ValidRoutineCategory(c RoutineCategory) bool {
	switch c {
	case CategoryStrength, CategoryHypertrophy, CategoryEndurance, CategoryMixed, CategoryCustom:
		return true
	}
	return false
}

// Difficulty rates how demanding a routine is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty reports whether d is one of the closed difficulty set.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Estimated duration bounds for a routine, in minutes.
const (
	RoutineMinDuration = 15
	RoutineMaxDuration = 180
)

// Routine is a named, reusable workout blueprint owned by a user.
// TemplateKey links back to the static template catalog the routine was
// seeded from; it is empty for hand-made routines.
type Routine struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID          primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name             string             `bson:"name" json:"name"`
	TemplateKey      string             `bson:"templateKey,omitempty" json:"templateKey,omitempty"`
	Category         RoutineCategory    `bson:"category" json:"category"`
	Difficulty       Difficulty         `bson:"difficulty" json:"difficulty"`
	EstimatedMinutes *int               `bson:"estimatedMinutes,omitempty" json:"estimatedMinutes,omitempty"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Active           bool               `bson:"active" json:"active"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
