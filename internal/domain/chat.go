package domain

// Message roles as sent to the chat completions API and persisted in the
// conversation store.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the agents
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions carries per-call sampling controls. Agents configure these per
// workflow.
type ChatOptions struct {
	Temperature         float64
	MaxCompletionTokens int
}
