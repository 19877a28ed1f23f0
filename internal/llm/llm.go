package llm

import "context"

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message sent to a completion provider.
type Message struct {
	Role    string
	Content string
}

// Client abstracts LLM providers for the analysis pipeline. Implementations
// return the raw assistant text; downstream recovery and repair layers own
// making sense of it.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
