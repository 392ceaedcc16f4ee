package ai

// MessageRole represents the role of a provider message; compatible with string.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response (prose or tool calls)
	RoleTool      MessageRole = "tool"      // Tool execution results
)

// Message is the provider-facing representation of a single conversation turn.
// It is a closed union discriminated by Role:
//
//   - RoleSystem / RoleUser carry Content only.
//   - RoleAssistant carries Content, or ToolCalls with empty Content
//     (tool-calling turns carry no prose).
//   - RoleTool carries ToolResults only.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolResults []ToolResult `json:"tool_results,omitempty"` // For role=tool reporting outcomes
}

// ToolCall represents a function/tool invocation requested by the model.
type ToolCall struct {
	ID        string         `json:"id,omitempty"` // Unique identifier for this tool call
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult carries the outcome of one tool call back to the provider.
//
// ToolName and Args are not recoverable from the stored message format, so
// they are zero-valued when a result is reconstructed from history. Providers
// only require ToolCallID to correlate the result, so the loss is accepted
// rather than papered over with invented values.
type ToolResult struct {
	ToolCallID string         `json:"tool_call_id"`
	ToolName   string         `json:"tool_name,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	Result     any            `json:"result,omitempty"`
}

// Usage reports token consumption for one provider call. A nil *Usage on
// [ChatResponse] means the provider did not report usage at all, which is
// distinct from a reported zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// TotalTokens returns the combined prompt and completion token count.
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// Step describes one internal round of a multi-step provider call (for
// example an automatic tool-use loop inside the SDK). Only the number of
// steps is persisted; the per-step payload is kept for callers that want to
// inspect intermediate turns.
type Step struct {
	Text         string     `json:"text,omitempty"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// ChatResponse is the provider response consumed by the shim. Every field is
// optional: an empty string, nil pointer, or empty slice means the provider
// did not report that field.
type ChatResponse struct {
	ID           string `json:"id,omitempty"`    // Provider-assigned request/response identifier
	Model        string `json:"model,omitempty"` // Model that produced the response
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Steps        []Step `json:"steps,omitempty"`
}
