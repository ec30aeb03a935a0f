package models

import "encoding/json"

// TokenUsage captures the token counts a provider reports for one call
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolCall is a structured function/tool invocation returned by a provider.
// Arguments is the raw JSON the model supplied for the tool's parameters.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Completion is a provider-agnostic LLM response: the assistant text, any
// tool invocations, and usage metrics for telemetry
type Completion struct {
	Text       string     `json:"text"`
	Model      string     `json:"model"`
	StopReason string     `json:"stop_reason,omitempty"`
	Usage      TokenUsage `json:"usage"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// CompletionRequest is the provider-agnostic request shape
type CompletionRequest struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}
