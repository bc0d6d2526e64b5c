// Package coach defines the AI text generation collaborator consumed by the
// coaching-chat feature, plus an HTTP implementation speaking the
// chat-completions wire format.
package coach

import "context"

// Message is one turn of a coaching conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// TextGenerator produces free-text from a bounded message history.
type TextGenerator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
