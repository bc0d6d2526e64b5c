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

const (
	workoutCollectionName         = "workouts"
	workoutExerciseCollectionName = "workout_exercises"
	workoutSetCollectionName      = "workout_sets"
)

// mongoWorkoutRepository implements repository.WorkoutRepository over three
// collections: workouts, workout_exercises, workout_sets. There is no
// cascading delete between them; callers sequence deletes leaf-first inside
// a transaction.
type mongoWorkoutRepository struct {
	workouts  *mongo.Collection
	exercises *mongo.Collection
	sets      *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		workouts:  db.Collection(workoutCollectionName),
		exercises: db.Collection(workoutExerciseCollectionName),
		sets:      db.Collection(workoutSetCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.OwnerID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires ownerId and name")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Date.IsZero() {
		workout.Date = now
	}

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListByOwner returns the owner's workouts matching the filter, sorted by
// date descending.
func (r *mongoWorkoutRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	query := bson.M{"ownerId": ownerID}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	dateFilter := bson.M{}
	if filter.Since != nil {
		dateFilter["$gte"] = *filter.Since
	}
	if filter.Before != nil {
		dateFilter["$lt"] = *filter.Before
	}
	if len(dateFilter) > 0 {
		query["date"] = dateFilter
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.workouts.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update persists the mutable workout fields. Ownership never changes here.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":            workout.Name,
			"status":          workout.Status,
			"date":            workout.Date,
			"durationMinutes": workout.DurationMinutes,
			"notes":           workout.Notes,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.workouts.UpdateOne(ctx, bson.M{"_id": workout.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout row. Its sets and exercises must already be gone.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.workouts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddExercise inserts a workout-exercise child row.
func (r *mongoWorkoutRepository) AddExercise(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.WorkoutID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires workoutId and exerciseId")
	}
	we.ID = primitive.NewObjectID()

	result, err := r.exercises.InsertOne(ctx, we)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout exercise ID")
	}
	return insertedID, nil
}

// AddSet inserts a workout-set leaf row.
func (r *mongoWorkoutRepository) AddSet(ctx context.Context, ws *domain.WorkoutSet) (primitive.ObjectID, error) {
	if ws.WorkoutExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout set requires workoutExerciseId")
	}
	ws.ID = primitive.NewObjectID()

	result, err := r.sets.InsertOne(ctx, ws)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout set ID")
	}
	return insertedID, nil
}

// GetExercises retrieves a workout's exercise rows sorted by order.
func (r *mongoWorkoutRepository) GetExercises(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.exercises.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.WorkoutExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetSets retrieves the sets of one workout exercise sorted by set number.
func (r *mongoWorkoutRepository) GetSets(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}})
	cursor, err := r.sets.Find(ctx, bson.M{"workoutExerciseId": workoutExerciseID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []domain.WorkoutSet
	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// DeleteSetsByWorkoutID removes every set belonging to a workout, via its
// exercise rows.
func (r *mongoWorkoutRepository) DeleteSetsByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	exerciseIDs, err := r.exerciseIDsForWorkout(ctx, workoutID)
	if err != nil {
		return err
	}
	if len(exerciseIDs) == 0 {
		return nil
	}
	_, err = r.sets.DeleteMany(ctx, bson.M{"workoutExerciseId": bson.M{"$in": exerciseIDs}})
	return err
}

// DeleteExercisesByWorkoutID removes a workout's exercise rows. Their sets
// must already be gone.
func (r *mongoWorkoutRepository) DeleteExercisesByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.exercises.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

// CountSetsByWorkoutIDs returns the total number of sets across the given
// workouts.
func (r *mongoWorkoutRepository) CountSetsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) (int64, error) {
	if len(workoutIDs) == 0 {
		return 0, nil
	}

	cursor, err := r.exercises.Find(ctx,
		bson.M{"workoutId": bson.M{"$in": workoutIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	exerciseIDs := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		exerciseIDs[i] = row.ID
	}
	return r.sets.CountDocuments(ctx, bson.M{"workoutExerciseId": bson.M{"$in": exerciseIDs}})
}

func (r *mongoWorkoutRepository) exerciseIDsForWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.exercises.Find(ctx,
		bson.M{"workoutId": workoutID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// EnsureWorkoutIndexes creates necessary indexes for the workout collections.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) {
	workoutIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, workoutIndexes)

	exerciseIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(workoutExerciseCollectionName).Indexes().CreateMany(ctx, exerciseIndexes)

	setIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutExerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(workoutSetCollectionName).Indexes().CreateMany(ctx, setIndexes)
}
