package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mxmkrg/fittrack/internal/coach"
	"github.com/mxmkrg/fittrack/internal/domain"
	"github.com/mxmkrg/fittrack/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---

type CoachService interface {
	// Chat sends the conversation history plus the new user message to the
	// text provider and returns the assistant reply. History that exceeds the
	// token budget is truncated, always keeping the opening message.
	Chat(ctx context.Context, userID primitive.ObjectID, history []coach.Message, message string) (string, error)
}

// --- Service Implementation ---

type coachService struct {
	generator   coach.TextGenerator
	profileRepo repository.ProfileRepository
	tokenBudget int
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(generator coach.TextGenerator, profileRepo repository.ProfileRepository, tokenBudget int) CoachService {
	if tokenBudget <= 0 {
		tokenBudget = 3000
	}
	return &coachService{
		generator:   generator,
		profileRepo: profileRepo,
		tokenBudget: tokenBudget,
	}
}

const coachSystemPrompt = "You are a concise, encouraging fitness coach. " +
	"Give practical training advice grounded in the user's profile. " +
	"Recommend consulting a professional for medical concerns."

// Chat assembles system prompt + profile context + truncated history and
// delegates to the provider.
func (s *coachService) Chat(ctx context.Context, userID primitive.ObjectID, history []coach.Message, message string) (string, error) {
	if userID == primitive.NilObjectID {
		return "", ErrAccessDenied
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", validationErrorf("message must not be empty")
	}

	system := coachSystemPrompt
	if profile, err := s.profileRepo.GetByUserID(ctx, userID); err == nil {
		if summary := profileContext(profile); summary != "" {
			system += "\n\nUser profile:\n" + summary
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", storageFailure("get profile for coach", err)
	}

	messages := make([]coach.Message, 0, len(history)+2)
	messages = append(messages, coach.Message{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, coach.Message{Role: "user", Content: message})
	messages = TruncateHistory(messages, s.tokenBudget)

	reply, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return "", storageFailure("generate coach reply", err)
	}
	return reply, nil
}

// profileContext renders the answered profile fields as prompt lines.
func profileContext(p *domain.UserProfile) string {
	var lines []string
	if p.Age != nil {
		lines = append(lines, fmt.Sprintf("- Age: %d", *p.Age))
	}
	if p.Gender != "" {
		lines = append(lines, "- Gender: "+p.Gender)
	}
	if p.HeightCM != nil {
		lines = append(lines, fmt.Sprintf("- Height: %.0f cm", *p.HeightCM))
	}
	if p.WeightKG != nil {
		lines = append(lines, fmt.Sprintf("- Weight: %.1f kg", *p.WeightKG))
	}
	if p.Goal != "" {
		lines = append(lines, "- Goal: "+p.Goal)
	}
	if p.DaysPerWeek != nil {
		lines = append(lines, fmt.Sprintf("- Training days per week: %d", *p.DaysPerWeek))
	}
	if p.SessionMinutes != nil {
		lines = append(lines, fmt.Sprintf("- Minutes per session: %d", *p.SessionMinutes))
	}
	if len(p.Limitations) > 0 {
		lines = append(lines, "- Limitations: "+strings.Join(p.Limitations, ", "))
	}
	return strings.Join(lines, "\n")
}

// estimateTokens approximates the provider's tokenizer at roughly four
// characters per token, rounded up.
func estimateTokens(content string) int {
	return (len(content) + 3) / 4
}

// TruncateHistory drops the oldest messages until the estimated token count
// fits the budget. The first message (the system prompt) is always kept; after
// that, the most recent messages that still fit are kept in order.
func TruncateHistory(messages []coach.Message, budget int) []coach.Message {
	if len(messages) == 0 {
		return messages
	}

	total := 0
	for _, m := range messages {
		total += estimateTokens(m.Content)
	}
	if total <= budget {
		return messages
	}

	remaining := budget - estimateTokens(messages[0].Content)
	kept := make([]coach.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 1; i-- {
		cost := estimateTokens(messages[i].Content)
		if cost > remaining {
			break
		}
		remaining -= cost
		kept = append(kept, messages[i])
	}

	result := make([]coach.Message, 0, len(kept)+1)
	result = append(result, messages[0])
	for i := len(kept) - 1; i >= 0; i-- {
		result = append(result, kept[i])
	}
	return result
}
