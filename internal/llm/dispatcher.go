package llm

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/embercraft/companion/internal/task"
)

// fallbackFailureText is returned when every provider in the chain fails;
// it is deterministic so tests and players see the same message every time.
const fallbackFailureText = "I couldn't reach any AI provider right now. Try again in a moment."

// iterationCapFallbackText is returned if the agent loop exhausts
// max_tool_iterations without ever producing plain text.
const iterationCapFallbackText = "I've been going back and forth too long without a clear answer — let's try a simpler request."

// dedupBreakerThreshold is the repeated-call count that trips the stop
// directive, forcing one final plain-text completion instead of letting
// the model retry the same tool call forever.
const dedupBreakerThreshold = 3

// ToolExecutor is implemented by the tool registry so the dispatcher can
// invoke tools without importing internal/tools directly (tools will need
// to import internal/task to enqueue Task instances, so the dependency runs
// the other way).
type ToolExecutor interface {
	// Schemas returns the currently enabled tool set to expose to providers.
	Schemas() []ToolSchema
	// Has reports whether name is a known, currently enabled tool.
	Has(name string) bool
	// Execute runs toolName with the given JSON arguments and always
	// returns text: success text, or "Error: ..." on failure. Tool errors
	// never escape as a Go error — the model sees them as ordinary tool
	// output and decides how to react.
	Execute(ctx context.Context, ownerID, companionName, toolName, argsJSON string) string
}

// HistoryStore persists and recalls the per-owner conversation so agent-loop
// entries can be resumed across calls.
type HistoryStore interface {
	History(ownerID string) []Message
	Append(ownerID string, msg Message)
}

// Announcer receives the dispatcher's final user-facing text.
type Announcer interface {
	Announce(ownerID, message string)
}

// Dispatcher drives one companion's LLM interactions: the three-provider
// fallback chain, the tool-calling agent loop with its dedup breaker, and
// the deterministic/continuation re-entry points the task engine calls into.
type Dispatcher struct {
	mu sync.Mutex

	cfg Configuration

	primary, fallback, local Provider
	tools                    ToolExecutor
	history                  HistoryStore
	announcer                Announcer

	companionName  string
	systemPromptFn func(companionName string) string

	unhealthyUntil map[string]time.Time
}

// NewDispatcher builds a Dispatcher for one companion. local must be
// non-nil; primary/fallback may be nil if unconfigured, in which case they
// are skipped in the fallback chain.
func NewDispatcher(cfg Configuration, primary, fallback, local Provider, tools ToolExecutor, history HistoryStore, announcer Announcer, companionName string, systemPromptFn func(string) string) *Dispatcher {
	if systemPromptFn == nil {
		systemPromptFn = func(name string) string {
			return "You are " + name + ", a helpful Minecraft companion. Use tools to act in the world."
		}
	}
	return &Dispatcher{
		cfg: cfg, primary: primary, fallback: fallback, local: local,
		tools: tools, history: history, announcer: announcer,
		companionName: companionName, systemPromptFn: systemPromptFn,
		unhealthyUntil: make(map[string]time.Time),
	}
}

// RunAgentLoop is the top-level entry for a fresh user message: builds the
// message list from system prompt + history + the new message, then runs
// the agent loop to completion.
func (d *Dispatcher) RunAgentLoop(ctx context.Context, ownerID, userMessage string) string {
	history := d.history.History(ownerID)
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userMessage})
	d.history.Append(ownerID, Message{Role: "user", Content: userMessage})

	text := d.loop(ctx, ownerID, messages)
	d.history.Append(ownerID, Message{Role: "assistant", Content: text})
	if d.announcer != nil {
		d.announcer.Announce(ownerID, text)
	}
	return text
}

// ContinueAfterTask implements continueAfterTask(cont, result, owner, name):
// builds the synthetic success message from the continuation and re-enters
// the agent loop with history plus that message.
func (d *Dispatcher) ContinueAfterTask(cont *task.Continuation, result, ownerID, taskName string) string {
	synthetic := cont.SuccessMessage(taskName, result)
	return d.ContinueWithLLM(ownerID, synthetic)
}

// ContinueWithLLM implements task.ContinuationExecutor: it enters a fresh
// agent loop seeded with the given synthetic message (a TASK_COMPLETE or
// TASK_FAILED lead-in), appended to history as a user-role turn.
func (d *Dispatcher) ContinueWithLLM(ownerID, syntheticMessage string) {
	ctx := context.Background()
	history := d.history.History(ownerID)
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: syntheticMessage})
	d.history.Append(ownerID, Message{Role: "user", Content: syntheticMessage})

	text := d.loop(ctx, ownerID, messages)
	d.history.Append(ownerID, Message{Role: "assistant", Content: text})
	if d.announcer != nil {
		d.announcer.Announce(ownerID, text)
	}
}

// ExecuteDeterministic implements task.ContinuationExecutor: it invokes a
// single tool directly, bypassing the agent loop entirely, and relays the
// result as the next assistant message.
func (d *Dispatcher) ExecuteDeterministic(ownerID, toolName, argsJSON string) (string, bool) {
	if d.tools == nil || !d.tools.Has(toolName) {
		return "", false
	}
	ctx := context.Background()
	resultText := d.tools.Execute(ctx, ownerID, d.companionName, toolName, argsJSON)
	d.history.Append(ownerID, Message{Role: "assistant", Content: resultText})
	return resultText, true
}

// loop runs the agentic tool-calling loop: up to MaxToolIterations
// completions, executing every tool call a response contains, tripping the
// dedup breaker on a tool-call signature repeated dedupBreakerThreshold
// times.
func (d *Dispatcher) loop(ctx context.Context, ownerID string, messages []Message) string {
	sigCounts := make(map[string]int)
	var schemas []ToolSchema
	if d.tools != nil {
		schemas = d.tools.Schemas()
	}

	for iter := 0; iter < d.cfg.MaxToolIterations; iter++ {
		resp, failed := d.complete(ctx, messages, schemas)
		if failed {
			return fallbackFailureText
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Text
		}

		messages = append(messages, Message{Role: "assistant", ToolCalls: resp.ToolCalls})
		tripped := false
		for _, tc := range resp.ToolCalls {
			sig := callSignature(tc)
			sigCounts[sig]++
			resultText := ""
			if d.tools != nil {
				resultText = d.tools.Execute(ctx, ownerID, d.companionName, tc.Name, tc.ArgsJSON)
			}
			messages = append(messages, Message{Role: "tool", Content: resultText, ToolCallID: tc.ID})
			if sigCounts[sig] >= dedupBreakerThreshold {
				tripped = true
			}
		}

		if tripped {
			messages = append(messages, Message{
				Role:    "system",
				Content: "You have repeated the same tool call too many times. Stop retrying and produce one final user-facing response now.",
			})
			final, failed := d.complete(ctx, messages, nil)
			if failed {
				return fallbackFailureText
			}
			return final.Text
		}
	}
	return iterationCapFallbackText
}

func callSignature(tc ToolCall) string {
	return tc.Name + "|" + normalizeArgsJSON(tc.ArgsJSON)
}

// normalizeArgsJSON re-encodes argsJSON with sorted object keys so two
// semantically identical argument sets (possibly emitted with differing key
// order) produce the same dedup signature.
func normalizeArgsJSON(argsJSON string) string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(argsJSON), &raw); err != nil {
		return strings.TrimSpace(argsJSON)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.Write(raw[k])
	}
	b.WriteByte('}')
	return b.String()
}

func (d *Dispatcher) complete(ctx context.Context, messages []Message, schemas []ToolSchema) (CompletionResponse, bool) {
	req := CompletionRequest{
		System:      d.systemPromptFn(d.companionName),
		Messages:    messages,
		Tools:       schemas,
		Temperature: d.cfg.Temperature,
		MaxTokens:   d.cfg.MaxTokens,
	}
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()

	resp, err := d.completeWithFallback(reqCtx, req)
	if err != nil {
		return CompletionResponse{}, true
	}
	return resp, false
}

// completeWithFallback attempts primary; on transport failure, timeout, or
// HTTP 429 it attempts fallback; on the same from fallback it attempts
// local. Non-429 4xx errors short-circuit immediately without advancing the
// chain. Local is always attempted last regardless of health cooldown.
func (d *Dispatcher) completeWithFallback(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var lastErr error
	for i, p := range []Provider{d.primary, d.fallback, d.local} {
		if p == nil {
			continue
		}
		isLocal := i == 2
		if !isLocal && !d.isHealthy(p.Name()) {
			continue
		}

		resp, err := p.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		pe := AsProviderError(p.Name(), err)
		if !pe.Kind.DrivesFallback() {
			return CompletionResponse{}, pe
		}
		if !isLocal {
			d.markUnhealthy(p.Name())
		}
		lastErr = pe
	}
	if lastErr == nil {
		lastErr = &ProviderError{Kind: KindTransportFailure, Provider: "none", Message: "no providers configured"}
	}
	return CompletionResponse{}, lastErr
}

func (d *Dispatcher) isHealthy(name string) bool {
	if d.cfg.ProviderFailureCooldownTicks <= 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.unhealthyUntil[name]
	if !ok {
		return true
	}
	if time.Now().After(until) {
		delete(d.unhealthyUntil, name)
		return true
	}
	return false
}

func (d *Dispatcher) markUnhealthy(name string) {
	if d.cfg.ProviderFailureCooldownTicks <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	// A tick is modeled as 50ms (20 Hz server tick) for this cooldown window
	// since the dispatcher runs off the tick thread on its own worker pool.
	d.unhealthyUntil[name] = time.Now().Add(time.Duration(d.cfg.ProviderFailureCooldownTicks) * 50 * time.Millisecond)
}
