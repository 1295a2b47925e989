// Package providers implements the three concrete llm.Provider backends:
// cloud providers over the OpenAI-compatible wire format, and a local
// provider speaking the Ollama-style /api/chat protocol.
package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/embercraft/companion/internal/backoff"
	"github.com/embercraft/companion/internal/llm"
)

// cloudRetryAttempts bounds how many times a single provider retries a
// transient failure (rate limit, timeout, transport) before handing control
// back to the dispatcher's own provider-to-provider fallback chain.
const cloudRetryAttempts = 3

// CloudProvider wraps an OpenAI-compatible chat-completions endpoint. The
// same type backs both the primary and fallback providers — only the
// base URL, API key, and model differ between them.
type CloudProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewCloudProvider builds a CloudProvider against baseURL with apiKey. An
// empty baseURL uses the OpenAI default endpoint.
func NewCloudProvider(name, baseURL, apiKey, model string) *CloudProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &CloudProvider{client: openai.NewClientWithConfig(cfg), model: model, name: name}
}

func (p *CloudProvider) Name() string { return p.name }

// Complete issues a chat completion request, retrying transient failures
// (rate limits, timeouts, transport errors) with exponential backoff before
// returning control to the dispatcher's own fallback chain. A bad request
// or parse failure never retries — another attempt would fail identically.
func (p *CloudProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	policy := backoff.AggressivePolicy()
	var lastErr error
	for attempt := 1; attempt <= cloudRetryAttempts; attempt++ {
		resp, err := p.complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		var perr *llm.ProviderError
		if !errors.As(err, &perr) || !perr.Kind.DrivesFallback() || attempt == cloudRetryAttempts {
			return llm.CompletionResponse{}, err
		}
		if sleepErr := backoff.SleepWithBackoff(ctx, policy, attempt); sleepErr != nil {
			return llm.CompletionResponse{}, sleepErr
		}
	}
	return llm.CompletionResponse{}, lastErr
}

// complete issues a single non-streaming chat completion request and
// translates both the request and response between llm's provider-neutral
// shapes and the OpenAI wire format.
func (p *CloudProvider) complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(req.System, req.Messages),
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toOpenAITools(req.Tools)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return llm.CompletionResponse{}, classifyOpenAIError(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return llm.CompletionResponse{}, &llm.ProviderError{Kind: llm.KindParse, Provider: p.name, Message: "empty choices array"}
	}

	choice := resp.Choices[0].Message
	out := llm.CompletionResponse{Text: choice.Content}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
			ID:       tc.ID,
			Name:     tc.Function.Name,
			ArgsJSON: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toOpenAIMessages(system string, messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.ArgsJSON,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []llm.ToolSchema) []openai.Tool {
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		}
	}
	return out
}

// classifyOpenAIError maps a go-openai error into the closed ProviderError
// kind set so the dispatcher's fallback policy can act on it.
func classifyOpenAIError(provider string, err error) *llm.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &llm.ProviderError{Kind: llm.KindRateLimited, Provider: provider, Message: apiErr.Message, Cause: err}
		case apiErr.HTTPStatusCode >= 500:
			return &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: provider, Message: apiErr.Message, Cause: err}
		case apiErr.HTTPStatusCode >= 400:
			return &llm.ProviderError{Kind: llm.KindBadRequest, Provider: provider, Message: apiErr.Message, Cause: err}
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: provider, Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.ProviderError{Kind: llm.KindTimeout, Provider: provider, Cause: err}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return &llm.ProviderError{Kind: llm.KindTimeout, Provider: provider, Cause: err}
	}
	return &llm.ProviderError{Kind: llm.KindTransportFailure, Provider: provider, Cause: err}
}
