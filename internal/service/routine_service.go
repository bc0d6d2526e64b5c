package service

import (
	"context"
	"errors"

	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/notify"
	"github.com/mxmkrg/fittrack/internal/repository"
	"github.com/mxmkrg/fittrack/internal/templates"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRoutineInput is the payload for creating a routine by hand.
type CreateRoutineInput struct {
	Name             string
	Category         domain.RoutineCategory
	Difficulty       domain.Difficulty
	EstimatedMinutes *int
	Tags             []string
}

// --- Service Interface ---

type RoutineService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, input CreateRoutineInput) (*domain.Routine, error)
	// Seed creates one routine per entry of the static template catalog,
	// tagged with the template key for later resolution. Returns how many
	// routines were created.
	Seed(ctx context.Context, ownerID primitive.ObjectID) (int, error)
	List(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error)
	Delete(ctx context.Context, ownerID, routineID primitive.ObjectID) error
	// Clear removes every routine owned by the user in one atomic unit and
	// returns how many were deleted.
	Clear(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
}

// --- Service Implementation ---

type routineService struct {
	routineRepo repository.RoutineRepository
	tx          repository.TxRunner
	revalidator notify.Revalidator
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(routineRepo repository.RoutineRepository, tx repository.TxRunner, revalidator notify.Revalidator) RoutineService {
	return &routineService{
		routineRepo: routineRepo,
		tx:          tx,
		revalidator: revalidator,
	}
}

func (s *routineService) invalidateViews(ctx context.Context) {
	if err := s.revalidator.Invalidate(ctx, "/routines"); err != nil {
		logrus.WithError(err).Warn("revalidation hook failed")
	}
}

// Create validates the closed category/difficulty enums and the duration
// bounds, then persists the routine.
func (s *routineService) Create(ctx context.Context, ownerID primitive.ObjectID, input CreateRoutineInput) (*domain.Routine, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	if input.Name == "" {
		return nil, validationErrorf("name must not be empty")
	}
	if !domain.ValidRoutineCategory(input.Category) {
		return nil, validationErrorf("category must be one of strength, hypertrophy, endurance, mixed, custom")
	}
	if !domain.ValidDifficulty(input.Difficulty) {
		return nil, validationErrorf("difficulty must be one of beginner, intermediate, advanced")
	}
	if input.EstimatedMinutes != nil {
		if *input.EstimatedMinutes < domain.RoutineMinDuration || *input.EstimatedMinutes > domain.RoutineMaxDuration {
			return nil, validationErrorf("estimatedMinutes must be between %d and %d", domain.RoutineMinDuration, domain.RoutineMaxDuration)
		}
	}

	routine := &domain.Routine{
		OwnerID:          ownerID,
		Name:             input.Name,
		Category:         input.Category,
		Difficulty:       input.Difficulty,
		EstimatedMinutes: input.EstimatedMinutes,
		Tags:             input.Tags,
		Active:           true,
	}

	id, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, storageFailure("create routine", err)
	}
	routine.ID = id

	s.invalidateViews(ctx)
	return routine, nil
}

// Seed bulk-inserts one routine per template catalog entry, inside one
// transaction so a failed seed leaves nothing behind.
func (s *routineService) Seed(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	if ownerID == primitive.NilObjectID {
		return 0, ErrAccessDenied
	}

	keys := templates.Keys()
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			tmpl, _ := templates.Get(key)
			duration := tmpl.BaseDuration
			routine := &domain.Routine{
				OwnerID:          ownerID,
				Name:             tmpl.Name,
				TemplateKey:      key,
				Category:         categoryForPhase(tmpl.Phase),
				Difficulty:       difficultyOrDefault(tmpl.Difficulty),
				EstimatedMinutes: &duration,
				Tags:             []string{tmpl.Phase},
				Active:           true,
			}
			if _, err := s.routineRepo.Create(ctx, routine); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, storageFailure("seed routines", err)
	}

	s.invalidateViews(ctx)
	return len(keys), nil
}

// categoryForPhase maps a template phase onto the routine category enum.
func categoryForPhase(phase string) domain.RoutineCategory {
	switch phase {
	case "strength", "foundation":
		return domain.CategoryStrength
	case "hypertrophy":
		return domain.CategoryHypertrophy
	case "conditioning":
		return domain.CategoryEndurance
	}
	return domain.CategoryMixed
}

func difficultyOrDefault(d string) domain.Difficulty {
	if domain.ValidDifficulty(domain.Difficulty(d)) {
		return domain.Difficulty(d)
	}
	return domain.DifficultyBeginner
}

// List returns all routines owned by the user.
func (s *routineService) List(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Routine, error) {
	if ownerID == primitive.NilObjectID {
		return nil, ErrAccessDenied
	}
	routines, err := s.routineRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, storageFailure("list routines", err)
	}
	return routines, nil
}

// Delete removes one routine after the ownership check.
func (s *routineService) Delete(ctx context.Context, ownerID, routineID primitive.ObjectID) error {
	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storageFailure("get routine", err)
	}
	if err := authorizeOwner(ownerID, routine.OwnerID); err != nil {
		return err
	}

	if err := s.routineRepo.Delete(ctx, routine.ID); err != nil {
		return storageFailure("delete routine", err)
	}
	s.invalidateViews(ctx)
	return nil
}

// Clear removes every routine owned by the user in one atomic unit.
func (s *routineService) Clear(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	if ownerID == primitive.NilObjectID {
		return 0, ErrAccessDenied
	}

	var deleted int64
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.routineRepo.DeleteByOwnerID(ctx, ownerID)
		return err
	})
	if err != nil {
		return 0, storageFailure("clear routines", err)
	}

	if deleted > 0 {
		s.invalidateViews(ctx)
	}
	return deleted, nil
}
