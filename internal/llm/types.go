// Package llm implements the dispatch layer between the companion's task
// engine and the three-provider LLM fallback chain: a strict-ordered agent
// loop, deterministic single-tool execution, and continuation re-entry.
package llm

import "context"

// Message is one turn in a conversation, matching the OpenAI
// chat-completions shape the wire protocol uses.
type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on role="tool" messages
}

// ToolCall is a single function-call request from the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ArgsJSON  string `json:"args_json"`
}

// ToolSchema describes one callable tool to a provider: name, description,
// and a JSON-schema-shaped argument spec.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any // raw JSON-schema object, forwarded verbatim
}

// CompletionRequest is the logical payload every provider consumes,
// regardless of wire format.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Tools       []ToolSchema
	Temperature float64
	MaxTokens   int
}

// CompletionResponse is what a provider call produces: either assistant text
// or a set of tool calls (never both populated meaningfully — a provider
// emitting tool calls leaves Text empty).
type CompletionResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider is the capability surface each of the three logical providers
// (primary cloud, fallback cloud, local) implements.
type Provider interface {
	// Complete sends req and returns the parsed response. Errors should be
	// *ProviderError so the dispatcher can apply fallback policy; any other
	// error is treated as ProviderError{Kind: KindTransportFailure}.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// Name identifies the provider for logging and health-cooldown bookkeeping.
	Name() string
}
