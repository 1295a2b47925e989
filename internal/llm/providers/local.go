package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/embercraft/companion/internal/llm"
)

// LocalProvider speaks the Ollama-style /api/chat protocol used by
// self-hosted models. It is always attempted last in the fallback chain and
// is never put on a health cooldown.
type LocalProvider struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewLocalProvider builds a LocalProvider against baseURL (default
// http://localhost:11434 when empty).
func NewLocalProvider(baseURL, model string, timeout time.Duration) *LocalProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &LocalProvider{client: &http.Client{Timeout: timeout}, baseURL: baseURL, model: model}
}

func (p *LocalProvider) Name() string { return "local" }

type ollamaMessage struct {
	Role      string          `json:"role"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function ollamaFunctionCall `json:"function"`
}

type ollamaFunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type ollamaTool struct {
	Type     string             `json:"type"`
	Function ollamaToolFunction `json:"function"`
}

type ollamaToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool   `json:"tools,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Complete sends a non-streaming request (stream: false collapses Ollama's
// NDJSON response to a single final JSON object).
func (p *LocalProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	model := p.model
	if model == "" {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindBadRequest, Provider: p.Name(), Message: "no local model configured"}
	}

	payload := ollamaChatRequest{
		Model:    model,
		Stream:   false,
		Messages: toOllamaMessages(req.System, req.Messages),
	}
	if req.MaxTokens > 0 {
		payload.Options = map[string]any{"num_predict": req.MaxTokens}
	}
	if req.Temperature > 0 {
		if payload.Options == nil {
			payload.Options = map[string]any{}
		}
		payload.Options["temperature"] = req.Temperature
	}
	if len(req.Tools) > 0 {
		payload.Tools = toOllamaTools(req.Tools)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindBadRequest, Provider: p.Name(), Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: p.Name(), Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindTimeout, Provider: p.Name(), Cause: err}
		}
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: p.Name(), Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: p.Name(), Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindRateLimited, Provider: p.Name(), Message: string(respBody)}
	}
	if resp.StatusCode >= 500 {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: p.Name(), Message: string(respBody)}
	}
	if resp.StatusCode >= 400 {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindBadRequest, Provider: p.Name(), Message: string(respBody)}
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindParse, Provider: p.Name(), Message: fmt.Sprintf("decode response: %v", err)}
	}

	out := llm.CompletionResponse{Text: parsed.Message.Content}
	for i, tc := range parsed.Message.ToolCalls {
		argsJSON, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:       fmt.Sprintf("local-%d", i),
			Name:     tc.Function.Name,
			ArgsJSON: string(argsJSON),
		})
	}
	return out, nil
}

func toOllamaMessages(system string, messages []llm.Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, ollamaMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		msg := ollamaMessage{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			var args map[string]any
			json.Unmarshal([]byte(tc.ArgsJSON), &args)
			msg.ToolCalls = append(msg.ToolCalls, ollamaToolCall{Function: ollamaFunctionCall{Name: tc.Name, Arguments: args}})
		}
		out = append(out, msg)
	}
	return out
}

func toOllamaTools(tools []llm.ToolSchema) []ollamaTool {
	out := make([]ollamaTool, len(tools))
	for i, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out[i] = ollamaTool{Type: "function", Function: ollamaToolFunction{Name: t.Name, Description: t.Description, Parameters: params}}
	}
	return out
}
