package service

import (
	"context"
	"errors"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/notify"
	"github.com/mxmkrg/fittrack/internal/repository"
	"github.com/mxmkrg/fittrack/internal/templates"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Input / output types ---

// PlanSetInput describes one set of a planned exercise.
type PlanSetInput struct {
	Reps         int
	TargetWeight *float64
	Notes        string
}

// PlanExerciseInput describes one exercise of a planned workout. Input order
// becomes the WorkoutExercise order.
type PlanExerciseInput struct {
	ExerciseID primitive.ObjectID
	Notes      string
	Sets       []PlanSetInput
}

// PlanWorkoutInput is the payload for planning a new workout.
type PlanWorkoutInput struct {
	Name      string
	Date      time.Time
	Notes     string
	Exercises []PlanExerciseInput
}

// UpdateWorkoutInput is a partial update. Nil fields are left untouched; a
// non-nil Exercises slice replaces the entire exercise/set subtree.
type UpdateWorkoutInput struct {
	Name      *string
	Notes     *string
	Exercises []PlanExerciseInput
}

// WorkoutExerciseDetails is a workout exercise joined with its catalog entry
// and sets.
type WorkoutExerciseDetails struct {
	domain.WorkoutExercise
	Exercise *domain.Exercise    `json:"exercise,omitempty"`
	Sets     []domain.WorkoutSet `json:"sets"`
}

// WorkoutDetails is a workout joined with its full subtree.
type WorkoutDetails struct {
	domain.Workout
	Exercises []WorkoutExerciseDetails `json:"exercises"`
}

// --- Service Interface ---

type WorkoutService interface {
	Plan(ctx context.Context, ownerID primitive.ObjectID, input PlanWorkoutInput) (*domain.Workout, error)
	Start(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	StartFromRoutine(ctx context.Context, ownerID, routineID primitive.ObjectID) (*domain.Workout, error)
	Complete(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	Archive(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	Unarchive(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ArchiveOld(ctx context.Context, ownerID primitive.ObjectID) (int, error)
	Update(ctx context.Context, ownerID, workoutID primitive.ObjectID, input UpdateWorkoutInput) (*domain.Workout, error)
	Delete(ctx context.Context, ownerID, workoutID primitive.ObjectID) error
	ClearAll(ctx context.Context, ownerID primitive.ObjectID) (int, error)
	Get(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*WorkoutDetails, error)
	List(ctx context.Context, ownerID primitive.ObjectID, statuses []domain.WorkoutStatus, window Window) ([]domain.Workout, error)
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	routineRepo  repository.RoutineRepository
	tx           repository.TxRunner
	revalidator  notify.Revalidator
	now          func() time.Time
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	routineRepo repository.RoutineRepository,
	tx repository.TxRunner,
	revalidator notify.Revalidator,
) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		routineRepo:  routineRepo,
		tx:           tx,
		revalidator:  revalidator,
		now:          time.Now,
	}
}

// getOwnedWorkout fetches a workout and applies the ownership gate. Every
// lifecycle operation starts here so state and ownership errors abort before
// any write.
func (s *workoutService) getOwnedWorkout(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get workout", err)
	}
	if err := authorizeOwner(ownerID, workout.OwnerID); err != nil {
		return nil, err
	}
	return workout, nil
}

// invalidateViews fires the revalidation hook. Failures are logged and never
// surfaced: the write already succeeded.
func (s *workoutService) invalidateViews(ctx context.Context, path string) {
	if err := s.revalidator.Invalidate(ctx, path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("revalidation hook failed")
	}
}

// validatePlanExercises checks the nested exercise/set payload before any
// write: every set needs at least one rep and every exercise ID must exist
// in the catalog.
func (s *workoutService) validatePlanExercises(ctx context.Context, exercises []PlanExerciseInput) error {
	ids := make([]primitive.ObjectID, 0, len(exercises))
	seen := make(map[primitive.ObjectID]bool, len(exercises))
	for i, ex := range exercises {
		if ex.ExerciseID == primitive.NilObjectID {
			return validationErrorf("exercises[%d]: exercise id is required", i)
		}
		for j, set := range ex.Sets {
			if set.Reps < 1 {
				return validationErrorf("exercises[%d].sets[%d]: reps must be at least 1", i, j)
			}
		}
		if !seen[ex.ExerciseID] {
			seen[ex.ExerciseID] = true
			ids = append(ids, ex.ExerciseID)
		}
	}

	if len(ids) == 0 {
		return nil
	}
	found, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return storageFailure("resolve catalog exercises", err)
	}
	if len(found) != len(ids) {
		return validationErrorf("one or more exercise ids do not exist in the catalog")
	}
	return nil
}

// insertSubtree creates the WorkoutExercise and WorkoutSet children for a
// workout. Must run inside a transaction.
func (s *workoutService) insertSubtree(ctx context.Context, workoutID primitive.ObjectID, exercises []PlanExerciseInput) error {
	for i, ex := range exercises {
		weID, err := s.workoutRepo.AddExercise(ctx, &domain.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: ex.ExerciseID,
			Order:      i,
			Notes:      ex.Notes,
		})
		if err != nil {
			return err
		}
		for j, set := range ex.Sets {
			_, err := s.workoutRepo.AddSet(ctx, &domain.WorkoutSet{
				WorkoutExerciseID: weID,
				SetNumber:         j + 1,
				TargetReps:        set.Reps,
				TargetWeight:      set.TargetWeight,
				Completed:         false,
				Notes:             set.Notes,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteSubtree removes a workout's sets then exercises, in that order.
// Must run inside a transaction.
func (s *workoutService) deleteSubtree(ctx context.Context, workoutID primitive.ObjectID) error {
	if err := s.workoutRepo.DeleteSetsByWorkoutID(ctx, workoutID); err != nil {
		return err
	}
	return s.workoutRepo.DeleteExercisesByWorkoutID(ctx, workoutID)
}

// Plan creates a planned workout with its full exercise/set subtree in one
// atomic unit: either everything is created or nothing is.
func (s *workoutService) Plan(ctx context.Context, ownerID primitive.ObjectID, input PlanWorkoutInput) (*domain.Workout, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	if input.Name == "" {
		return nil, validationErrorf("name must not be empty")
	}
	if err := s.validatePlanExercises(ctx, input.Exercises); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now().UTC()
	}
	workout := &domain.Workout{
		OwnerID: ownerID,
		Name:    input.Name,
		Status:  domain.StatusPlanned,
		Date:    date,
		Notes:   input.Notes,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.workoutRepo.Create(ctx, workout)
		if err != nil {
			return err
		}
		workout.ID = id
		return s.insertSubtree(ctx, id, input.Exercises)
	})
	if err != nil {
		return nil, storageFailure("plan workout", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// Start moves a planned workout to active, resetting its date to now and
// clearing any duration.
func (s *workoutService) Start(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(workout.Status, domain.StatusActive) {
		return nil, ErrInvalidState
	}

	workout.Status = domain.StatusActive
	workout.Date = s.now().UTC()
	workout.DurationMinutes = nil

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, storageFailure("start workout", err)
	}
	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// StartFromRoutine materializes a routine's template into a new active
// workout. Catalog exercises referenced by name are created on first use via
// an atomic upsert, so concurrent starts cannot duplicate them.
func (s *workoutService) StartFromRoutine(ctx context.Context, ownerID, routineID primitive.ObjectID) (*domain.Workout, error) {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get routine", err)
	}
	if err := authorizeOwner(ownerID, routine.OwnerID); err != nil {
		return nil, err
	}

	tmpl, ok := templates.Get(routine.TemplateKey)
	if !ok {
		return nil, validationErrorf("routine %q has no resolvable template", routine.Name)
	}

	workout := &domain.Workout{
		OwnerID: ownerID,
		Name:    tmpl.Name,
		Status:  domain.StatusActive,
		Date:    s.now().UTC(),
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.workoutRepo.Create(ctx, workout)
		if err != nil {
			return err
		}
		workout.ID = id

		for i, tmplEx := range tmpl.Exercises {
			exercise, err := s.exerciseRepo.FindOrCreateByName(ctx, tmplEx.Name)
			if err != nil {
				return err
			}
			weID, err := s.workoutRepo.AddExercise(ctx, &domain.WorkoutExercise{
				WorkoutID:  id,
				ExerciseID: exercise.ID,
				Order:      i,
			})
			if err != nil {
				return err
			}
			var targetWeight *float64
			if tmplEx.BaseWeight > 0 {
				w := tmplEx.BaseWeight
				targetWeight = &w
			}
			for setNo := 1; setNo <= tmplEx.Sets; setNo++ {
				_, err := s.workoutRepo.AddSet(ctx, &domain.WorkoutSet{
					WorkoutExerciseID: weID,
					SetNumber:         setNo,
					TargetReps:        tmplEx.BaseReps,
					TargetWeight:      targetWeight,
					Completed:         false,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageFailure("start workout from routine", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// Complete marks an active workout completed and records its duration as
// whole minutes elapsed since creation, rounded down. Only active workouts
// qualify: the transition table also reaches completed from archived, but
// that edge belongs to Unarchive, which keeps the recorded duration intact.
func (s *workoutService) Complete(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Status != domain.StatusActive {
		return nil, ErrInvalidState
	}

	minutes := int(s.now().Sub(workout.CreatedAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	workout.Status = domain.StatusCompleted
	workout.DurationMinutes = &minutes

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, storageFailure("complete workout", err)
	}
	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// Archive moves a completed workout to archived.
func (s *workoutService) Archive(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.transition(ctx, ownerID, workoutID, domain.StatusArchived, "archive workout")
}

// Unarchive restores an archived workout to completed. This is the only
// reverse edge in the lifecycle.
func (s *workoutService) Unarchive(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.transition(ctx, ownerID, workoutID, domain.StatusCompleted, "unarchive workout")
}

func (s *workoutService) transition(ctx context.Context, ownerID, workoutID primitive.ObjectID, to domain.WorkoutStatus, op string) (*domain.Workout, error) {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(workout.Status, to) {
		return nil, ErrInvalidState
	}

	workout.Status = to
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, storageFailure(op, err)
	}
	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// ArchiveOld archives every completed workout dated more than one year ago
// and returns how many were archived.
func (s *workoutService) ArchiveOld(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	if ownerID == primitive.NilObjectID {
		return 0, ErrAccessDenied
	}
	cutoff := s.now().UTC().AddDate(-1, 0, 0)
	workouts, err := s.workoutRepo.ListByOwner(ctx, ownerID, repository.WorkoutFilter{
		Statuses: []domain.WorkoutStatus{domain.StatusCompleted},
		Before:   &cutoff,
	})
	if err != nil {
		return 0, storageFailure("list old workouts", err)
	}

	if len(workouts) == 0 {
		return 0, nil
	}

	// All-or-nothing like the other multi-row writes; a mid-sweep failure
	// must not leave the sweep half-applied.
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range workouts {
			workout := workouts[i]
			workout.Status = domain.StatusArchived
			if err := s.workoutRepo.Update(ctx, &workout); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageFailure("archive old workouts", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return len(workouts), nil
}

// Update patches name/notes. When an exercise list is provided it replaces
// the entire subtree: existing sets and exercises are deleted and the new
// ones inserted, all in one transaction. Set identity is not preserved
// across edits.
func (s *workoutService) Update(ctx context.Context, ownerID, workoutID primitive.ObjectID, input UpdateWorkoutInput) (*domain.Workout, error) {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, validationErrorf("name must not be empty")
		}
		workout.Name = *input.Name
	}
	if input.Notes != nil {
		workout.Notes = *input.Notes
	}

	if input.Exercises == nil {
		if err := s.workoutRepo.Update(ctx, workout); err != nil {
			return nil, storageFailure("update workout", err)
		}
		s.invalidateViews(ctx, "/workouts")
		return workout, nil
	}

	if err := s.validatePlanExercises(ctx, input.Exercises); err != nil {
		return nil, err
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.workoutRepo.Update(ctx, workout); err != nil {
			return err
		}
		if err := s.deleteSubtree(ctx, workout.ID); err != nil {
			return err
		}
		return s.insertSubtree(ctx, workout.ID, input.Exercises)
	})
	if err != nil {
		return nil, storageFailure("replace workout exercises", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return workout, nil
}

// Delete removes a workout and its descendants in dependency order: sets,
// then exercises, then the workout. The storage layer does not cascade.
// Deleting an active workout is the "cancel" path and is always allowed.
func (s *workoutService) Delete(ctx context.Context, ownerID, workoutID primitive.ObjectID) error {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.deleteSubtree(ctx, workout.ID); err != nil {
			return err
		}
		return s.workoutRepo.Delete(ctx, workout.ID)
	})
	if err != nil {
		return storageFailure("delete workout", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return nil
}

// ClearAll deletes every workout owned by the user, subtrees included, in
// one atomic unit. Returns how many workouts were removed.
func (s *workoutService) ClearAll(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	if ownerID == primitive.NilObjectID {
		return 0, ErrAccessDenied
	}
	workouts, err := s.workoutRepo.ListByOwner(ctx, ownerID, repository.WorkoutFilter{})
	if err != nil {
		return 0, storageFailure("list workouts", err)
	}
	if len(workouts) == 0 {
		return 0, nil
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, workout := range workouts {
			if err := s.deleteSubtree(ctx, workout.ID); err != nil {
				return err
			}
			if err := s.workoutRepo.Delete(ctx, workout.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageFailure("clear workouts", err)
	}

	s.invalidateViews(ctx, "/workouts")
	return len(workouts), nil
}

// Get returns a workout joined with its ordered exercises, their catalog
// entries and their sets.
func (s *workoutService) Get(ctx context.Context, ownerID, workoutID primitive.ObjectID) (*WorkoutDetails, error) {
	workout, err := s.getOwnedWorkout(ctx, ownerID, workoutID)
	if err != nil {
		return nil, err
	}

	workoutExercises, err := s.workoutRepo.GetExercises(ctx, workout.ID)
	if err != nil {
		return nil, storageFailure("get workout exercises", err)
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(workoutExercises))
	for _, we := range workoutExercises {
		exerciseIDs = append(exerciseIDs, we.ExerciseID)
	}
	catalog, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, storageFailure("get catalog exercises", err)
	}
	catalogByID := make(map[primitive.ObjectID]*domain.Exercise, len(catalog))
	for i := range catalog {
		catalogByID[catalog[i].ID] = &catalog[i]
	}

	details := &WorkoutDetails{
		Workout:   *workout,
		Exercises: make([]WorkoutExerciseDetails, 0, len(workoutExercises)),
	}
	for _, we := range workoutExercises {
		sets, err := s.workoutRepo.GetSets(ctx, we.ID)
		if err != nil {
			return nil, storageFailure("get workout sets", err)
		}
		details.Exercises = append(details.Exercises, WorkoutExerciseDetails{
			WorkoutExercise: we,
			Exercise:        catalogByID[we.ExerciseID],
			Sets:            sets,
		})
	}
	return details, nil
}

// List returns the owner's workouts filtered by status set and date window,
// newest first.
func (s *workoutService) List(ctx context.Context, ownerID primitive.ObjectID, statuses []domain.WorkoutStatus, window Window) ([]domain.Workout, error) {
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
		return nil, storageFailure("list workouts", err)
	}
	return workouts, nil
}
