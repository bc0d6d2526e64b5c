package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is an optional one-to-one extension of User holding training
// preferences. Numeric fields are pointers so "not answered yet" is
// distinguishable from zero.
type UserProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Age            *int               `bson:"age,omitempty" json:"age,omitempty"`
	Gender         string             `bson:"gender,omitempty" json:"gender,omitempty"`
	HeightCM       *float64           `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKG       *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Goal           string             `bson:"goal,omitempty" json:"goal,omitempty"` // e.g. "strength", "weight loss"
	DaysPerWeek    *int               `bson:"daysPerWeek,omitempty" json:"daysPerWeek,omitempty"`
	SessionMinutes *int               `bson:"sessionMinutes,omitempty" json:"sessionMinutes,omitempty"`
	Limitations    []string           `bson:"limitations,omitempty" json:"limitations,omitempty"` // Exercise limitations / injuries
	AvatarKey      string             `bson:"avatarKey,omitempty" json:"-"`                       // S3 object key, internal use
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
