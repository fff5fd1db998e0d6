package assistant

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleTool      = "tool"
)

// ChatMessage is the internal message representation handed to LLM backends.
// Assistant messages that requested a tool carry ToolCall; tool-role messages
// carry ToolResult.
type ChatMessage struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolCall is a structured request from the model to invoke a named function.
type ToolCall struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// StringArg extracts a string argument, empty when absent or mistyped.
func (c *ToolCall) StringArg(key string) string {
	if c == nil || c.Arguments == nil {
		return ""
	}
	s, _ := c.Arguments[key].(string)
	return s
}

// ToolResult carries the serialized outcome of a tool invocation back to the
// model.
type ToolResult struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ToolParam describes one parameter of a tool declaration.
type ToolParam struct {
	Type        string
	Description string
}

// ToolDeclaration describes a function the model may call.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]ToolParam
	Required    []string
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	Tools       []ToolDeclaration
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// LLMResponse is either free text or a tool call; when ToolCall is set the
// model chose to invoke a tool instead of answering.
type LLMResponse struct {
	Text       string
	ToolCall   *ToolCall
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the language model contract. Stateless per call: the caller
// supplies full context each time.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
