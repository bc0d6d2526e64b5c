package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = "user_profiles"

// mongoProfileRepository implements repository.ProfileRepository
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new UserProfile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// GetByUserID retrieves the profile belonging to a user, if any.
func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts the profile on first save and replaces the preference
// fields afterwards. Keyed by userId (unique index). The avatar key is
// managed separately via SetAvatarKey.
func (r *mongoProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if profile.UserID == primitive.NilObjectID {
		return errors.New("profile requires a user ID")
	}
	now := time.Now().UTC()

	filter := bson.M{"userId": profile.UserID}
	update := bson.M{
		"$set": bson.M{
			"age":            profile.Age,
			"gender":         profile.Gender,
			"heightCm":       profile.HeightCM,
			"weightKg":       profile.WeightKG,
			"goal":           profile.Goal,
			"daysPerWeek":    profile.DaysPerWeek,
			"sessionMinutes": profile.SessionMinutes,
			"limitations":    profile.Limitations,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"userId":    profile.UserID,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// SetAvatarKey stores only the avatar object key, creating the profile row
// if the user never answered the questionnaire.
func (r *mongoProfileRepository) SetAvatarKey(ctx context.Context, userID primitive.ObjectID, key string) error {
	if userID == primitive.NilObjectID {
		return errors.New("profile requires a user ID")
	}
	now := time.Now().UTC()

	filter := bson.M{"userId": userID}
	update := bson.M{
		"$set": bson.M{
			"avatarKey": key,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"userId":    userID,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// DeleteByUserID removes a user's profile. Missing profiles are not an
// error; the profile is optional.
func (r *mongoProfileRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

// EnsureProfileIndexes creates necessary indexes for the profiles collection.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
