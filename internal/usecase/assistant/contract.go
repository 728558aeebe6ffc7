package assistant

import "context"

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Valid chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reply is the provider's answer with token usage.
type Reply struct {
	Content      string `json:"content"`
	PromptTokens int    `json:"prompt_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}

// Provider generates chat completions.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (Reply, error)
}
