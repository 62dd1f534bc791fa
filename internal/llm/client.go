package llm

import (
	"context"
	"errors"
)

// Message is a minimal chat message crossing the model boundary.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrBadEnvelope is returned when the upstream reply matches neither the
// OpenAI-style completion envelope nor the plain {text} envelope.
var ErrBadEnvelope = errors.New("unexpected response format")

// Client is the model completion boundary: one instruction prompt plus a
// bounded recent-history window in, reply content out. Implementations own
// model selection and credential injection; callers only see content.
type Client interface {
	Complete(ctx context.Context, prompt string, history []Message) (string, error)
}
