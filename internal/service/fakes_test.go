package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is a shared in-memory backing store for the fake repositories.
// Error injection fields make a single named operation fail, which the
// transaction tests use to verify rollback behavior.
type memStore struct {
	users            map[primitive.ObjectID]domain.User
	profiles         map[primitive.ObjectID]domain.UserProfile // keyed by userID
	exercises        map[primitive.ObjectID]domain.Exercise
	routines         map[primitive.ObjectID]domain.Routine
	workouts         map[primitive.ObjectID]domain.Workout
	workoutExercises map[primitive.ObjectID]domain.WorkoutExercise
	workoutSets      map[primitive.ObjectID]domain.WorkoutSet

	failAddExercise error
	failAddSet      error
	failUpdate      error
	failDelete      error
	failCreate      error
}

func newMemStore() *memStore {
	return &memStore{
		users:            make(map[primitive.ObjectID]domain.User),
		profiles:         make(map[primitive.ObjectID]domain.UserProfile),
		exercises:        make(map[primitive.ObjectID]domain.Exercise),
		routines:         make(map[primitive.ObjectID]domain.Routine),
		workouts:         make(map[primitive.ObjectID]domain.Workout),
		workoutExercises: make(map[primitive.ObjectID]domain.WorkoutExercise),
		workoutSets:      make(map[primitive.ObjectID]domain.WorkoutSet),
	}
}

func (s *memStore) snapshot() *memStore {
	copied := newMemStore()
	for k, v := range s.users {
		copied.users[k] = v
	}
	for k, v := range s.profiles {
		copied.profiles[k] = v
	}
	for k, v := range s.exercises {
		copied.exercises[k] = v
	}
	for k, v := range s.routines {
		copied.routines[k] = v
	}
	for k, v := range s.workouts {
		copied.workouts[k] = v
	}
	for k, v := range s.workoutExercises {
		copied.workoutExercises[k] = v
	}
	for k, v := range s.workoutSets {
		copied.workoutSets[k] = v
	}
	return copied
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.profiles = from.profiles
	s.exercises = from.exercises
	s.routines = from.routines
	s.workouts = from.workouts
	s.workoutExercises = from.workoutExercises
	s.workoutSets = from.workoutSets
}

// fakeTxRunner emulates transactional rollback: it snapshots the store,
// runs the callback and restores the snapshot when the callback fails.
type fakeTxRunner struct {
	store *memStore
}

func (t *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(before)
		return err
	}
	return nil
}

// --- fake user repository ---

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	saved := *user
	saved.ID = id
	saved.CreatedAt = time.Now().UTC()
	saved.UpdatedAt = saved.CreatedAt
	r.store.users[id] = saved
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := u
	return &user, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.store.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

// --- fake profile repository ---

type fakeProfileRepo struct{ store *memStore }

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProfile, error) {
	p, ok := r.store.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	profile := p
	return &profile, nil
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	existing, ok := r.store.profiles[profile.UserID]
	saved := *profile
	if ok {
		saved.ID = existing.ID
		saved.AvatarKey = existing.AvatarKey
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.ID = primitive.NewObjectID()
		saved.CreatedAt = time.Now().UTC()
	}
	saved.UpdatedAt = time.Now().UTC()
	r.store.profiles[profile.UserID] = saved
	return nil
}

func (r *fakeProfileRepo) SetAvatarKey(ctx context.Context, userID primitive.ObjectID, key string) error {
	existing, ok := r.store.profiles[userID]
	if !ok {
		existing = domain.UserProfile{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
	}
	existing.AvatarKey = key
	existing.UpdatedAt = time.Now().UTC()
	r.store.profiles[userID] = existing
	return nil
}

func (r *fakeProfileRepo) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	delete(r.store.profiles, userID)
	return nil
}

// --- fake exercise repository ---

type fakeExerciseRepo struct{ store *memStore }

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	for _, e := range r.store.exercises {
		if e.Name == exercise.Name {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	saved := *exercise
	saved.ID = id
	saved.CreatedAt = time.Now().UTC()
	saved.UpdatedAt = saved.CreatedAt
	r.store.exercises[id] = saved
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.store.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	exercise := e
	return &exercise, nil
}

func (r *fakeExerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, id := range ids {
		if e, ok := r.store.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) GetAll(ctx context.Context) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(r.store.exercises))
	for _, e := range r.store.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) FindOrCreateByName(ctx context.Context, name string) (*domain.Exercise, error) {
	for _, e := range r.store.exercises {
		if e.Name == name {
			exercise := e
			return &exercise, nil
		}
	}
	id, err := r.Create(ctx, &domain.Exercise{Name: name})
	if err != nil {
		return nil, err
	}
	created := r.store.exercises[id]
	return &created, nil
}

func (r *fakeExerciseRepo) UpsertByName(ctx context.Context, exercise *domain.Exercise) error {
	for id, e := range r.store.exercises {
		if e.Name == exercise.Name {
			saved := *exercise
			saved.ID = id
			saved.CreatedAt = e.CreatedAt
			saved.UpdatedAt = time.Now().UTC()
			r.store.exercises[id] = saved
			return nil
		}
	}
	_, err := r.Create(ctx, exercise)
	return err
}

func (r *fakeExerciseRepo) Search(ctx context.Context, query, category string) ([]domain.Exercise, error) {
	all, _ := r.GetAll(ctx)
	var out []domain.Exercise
	for _, e := range all {
		if category != "" && e.Category != category {
			continue
		}
		if query == "" || containsFold(e.Name, query) || containsFold(e.Category, query) || anyContainsFold(e.MuscleGroups, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if containsFold(h, needle) {
			return true
		}
	}
	return false
}

// --- fake routine repository ---

type fakeRoutineRepo struct{ store *memStore }

func (r *fakeRoutineRepo) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if r.store.failCreate != nil {
		return primitive.NilObjectID, r.store.failCreate
	}
	id := primitive.NewObjectID()
	saved := *routine
	saved.ID = id
	saved.CreatedAt = time.Now().UTC()
	saved.UpdatedAt = saved.CreatedAt
	r.store.routines[id] = saved
	return id, nil
}

func (r *fakeRoutineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	rt, ok := r.store.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	routine := rt
	return &routine, nil
}

func (r *fakeRoutineRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error) {
	var out []domain.Routine
	for _, rt := range r.store.routines {
		if rt.OwnerID == ownerID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRoutineRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.store.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.routines, id)
	return nil
}

func (r *fakeRoutineRepo) DeleteByOwnerID(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, rt := range r.store.routines {
		if rt.OwnerID == ownerID {
			delete(r.store.routines, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- fake workout repository ---

type fakeWorkoutRepo struct{ store *memStore }

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if r.store.failCreate != nil {
		return primitive.NilObjectID, r.store.failCreate
	}
	id := primitive.NewObjectID()
	saved := *workout
	saved.ID = id
	saved.CreatedAt = time.Now().UTC()
	saved.UpdatedAt = saved.CreatedAt
	r.store.workouts[id] = saved
	workout.ID = id
	workout.CreatedAt = saved.CreatedAt
	return id, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.store.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	workout := w
	return &workout, nil
}

func (r *fakeWorkoutRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	statusSet := make(map[domain.WorkoutStatus]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statusSet[s] = true
	}

	var out []domain.Workout
	for _, w := range r.store.workouts {
		if w.OwnerID != ownerID {
			continue
		}
		if len(statusSet) > 0 && !statusSet[w.Status] {
			continue
		}
		if filter.Since != nil && w.Date.Before(*filter.Since) {
			continue
		}
		if filter.Before != nil && !w.Date.Before(*filter.Before) {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	if r.store.failUpdate != nil {
		return r.store.failUpdate
	}
	existing, ok := r.store.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	saved := *workout
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = time.Now().UTC()
	r.store.workouts[workout.ID] = saved
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if r.store.failDelete != nil {
		return r.store.failDelete
	}
	if _, ok := r.store.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) AddExercise(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if r.store.failAddExercise != nil {
		return primitive.NilObjectID, r.store.failAddExercise
	}
	id := primitive.NewObjectID()
	saved := *we
	saved.ID = id
	r.store.workoutExercises[id] = saved
	return id, nil
}

func (r *fakeWorkoutRepo) AddSet(ctx context.Context, ws *domain.WorkoutSet) (primitive.ObjectID, error) {
	if r.store.failAddSet != nil {
		return primitive.NilObjectID, r.store.failAddSet
	}
	id := primitive.NewObjectID()
	saved := *ws
	saved.ID = id
	r.store.workoutSets[id] = saved
	return id, nil
}

func (r *fakeWorkoutRepo) GetExercises(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	var out []domain.WorkoutExercise
	for _, we := range r.store.workoutExercises {
		if we.WorkoutID == workoutID {
			out = append(out, we)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeWorkoutRepo) GetSets(ctx context.Context, workoutExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	var out []domain.WorkoutSet
	for _, ws := range r.store.workoutSets {
		if ws.WorkoutExerciseID == workoutExerciseID {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *fakeWorkoutRepo) DeleteSetsByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	for weID, we := range r.store.workoutExercises {
		if we.WorkoutID != workoutID {
			continue
		}
		for wsID, ws := range r.store.workoutSets {
			if ws.WorkoutExerciseID == weID {
				delete(r.store.workoutSets, wsID)
			}
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) DeleteExercisesByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	for weID, we := range r.store.workoutExercises {
		if we.WorkoutID == workoutID {
			delete(r.store.workoutExercises, weID)
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) CountSetsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) (int64, error) {
	idSet := make(map[primitive.ObjectID]bool, len(workoutIDs))
	for _, id := range workoutIDs {
		idSet[id] = true
	}
	var count int64
	for _, ws := range r.store.workoutSets {
		we, ok := r.store.workoutExercises[ws.WorkoutExerciseID]
		if ok && idSet[we.WorkoutID] {
			count++
		}
	}
	return count, nil
}

// --- shared test fixture ---

type fixture struct {
	store       *memStore
	tx          *fakeTxRunner
	users       *fakeUserRepo
	profiles    *fakeProfileRepo
	exercises   *fakeExerciseRepo
	routines    *fakeRoutineRepo
	workouts    *fakeWorkoutRepo
	revalidator *recordingRevalidator
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:       store,
		tx:          &fakeTxRunner{store: store},
		users:       &fakeUserRepo{store: store},
		profiles:    &fakeProfileRepo{store: store},
		exercises:   &fakeExerciseRepo{store: store},
		routines:    &fakeRoutineRepo{store: store},
		workouts:    &fakeWorkoutRepo{store: store},
		revalidator: &recordingRevalidator{},
	}
}

// recordingRevalidator captures invalidated paths.
type recordingRevalidator struct {
	paths []string
}

func (r *recordingRevalidator) Invalidate(ctx context.Context, path string) error {
	r.paths = append(r.paths, path)
	return nil
}

// seedExercise inserts a catalog entry and returns its ID.
func (f *fixture) seedExercise(name, category string) primitive.ObjectID {
	id, _ := f.exercises.Create(context.Background(), &domain.Exercise{Name: name, Category: category})
	return id
}

// seedWorkout inserts a workout directly into the store.
func (f *fixture) seedWorkout(ownerID primitive.ObjectID, status domain.WorkoutStatus, date time.Time) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store.workouts[id] = domain.Workout{
		ID:        id,
		OwnerID:   ownerID,
		Name:      "seeded",
		Status:    status,
		Date:      date,
		CreatedAt: date,
		UpdatedAt: date,
	}
	return id
}
