package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
}

type Response struct {
	Text       string
	StopReason string
}

// Client is one text-generation backend. Implementations must honor ctx
// deadlines; the orchestrator relies on them to bound the reply path.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
