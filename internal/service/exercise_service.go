package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryGroup is one bucket of the grouped catalog view.
type CategoryGroup struct {
	Category  string            `json:"category"`
	Exercises []domain.Exercise `json:"exercises"`
}

// --- Service Interface ---

type ExerciseService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// Search filters the catalog by a case-insensitive substring over name,
	// category and muscle groups, optionally restricted to one category.
	Search(ctx context.Context, query, category string) ([]domain.Exercise, error)
	GroupedByCategory(ctx context.Context) ([]CategoryGroup, error)
	// FindOrCreateByName resolves a catalog entry, creating a bare one if
	// the name is unknown. Safe under concurrent creation.
	FindOrCreateByName(ctx context.Context, name string) (*domain.Exercise, error)
	// SeedCatalog upserts the given entries by name; re-running a seed is
	// idempotent. Returns how many entries were processed.
	SeedCatalog(ctx context.Context, entries []domain.Exercise) (int, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

// GetByID retrieves a single catalog exercise.
func (s *exerciseService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("get exercise", err)
	}
	return exercise, nil
}

// Search delegates substring matching to the repository.
func (s *exerciseService) Search(ctx context.Context, query, category string) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.Search(ctx, strings.TrimSpace(query), strings.TrimSpace(category))
	if err != nil {
		return nil, storageFailure("search exercises", err)
	}
	return exercises, nil
}

// GroupedByCategory returns the catalog bucketed by category, categories
// sorted alphabetically with uncategorized entries last.
func (s *exerciseService) GroupedByCategory(ctx context.Context) ([]CategoryGroup, error) {
	exercises, err := s.exerciseRepo.GetAll(ctx)
	if err != nil {
		return nil, storageFailure("list exercises", err)
	}

	const uncategorized = "Uncategorized"
	buckets := make(map[string][]domain.Exercise)
	for _, exercise := range exercises {
		category := exercise.Category
		if category == "" {
			category = uncategorized
		}
		buckets[category] = append(buckets[category], exercise)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		if category != uncategorized {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	if _, ok := buckets[uncategorized]; ok {
		categories = append(categories, uncategorized)
	}

	groups := make([]CategoryGroup, 0, len(categories))
	for _, category := range categories {
		groups = append(groups, CategoryGroup{Category: category, Exercises: buckets[category]})
	}
	return groups, nil
}

// FindOrCreateByName trims and validates the name, then defers to the
// repository's atomic upsert.
func (s *exerciseService) FindOrCreateByName(ctx context.Context, name string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("exercise name must not be empty")
	}
	exercise, err := s.exerciseRepo.FindOrCreateByName(ctx, name)
	if err != nil {
		return nil, storageFailure("find or create exercise", err)
	}
	return exercise, nil
}

// SeedCatalog upserts fully described entries, keyed by name.
func (s *exerciseService) SeedCatalog(ctx context.Context, entries []domain.Exercise) (int, error) {
	for i := range entries {
		entries[i].Name = strings.TrimSpace(entries[i].Name)
		if entries[i].Name == "" {
			return 0, validationErrorf("entries[%d]: exercise name must not be empty", i)
		}
	}
	for i := range entries {
		if err := s.exerciseRepo.UpsertByName(ctx, &entries[i]); err != nil {
			return i, storageFailure("seed exercise catalog", err)
		}
	}
	return len(entries), nil
}
