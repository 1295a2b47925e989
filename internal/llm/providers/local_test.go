package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/embercraft/companion/internal/llm"
)

func TestLocalProviderParsesPlainTextReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3" {
			t.Errorf("model = %q, want llama3", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hello there"},
			Done:    true,
		})
	}))
	defer server.Close()

	p := NewLocalProvider(server.URL, "llama3", time.Second)
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{Messages: []llm.Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello there" {
		t.Fatalf("text = %q", resp.Text)
	}
}

func TestLocalProviderParsesToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{
				Role: "assistant",
				ToolCalls: []ollamaToolCall{
					{Function: ollamaFunctionCall{Name: "chop_trees", Arguments: map[string]any{"count": float64(4)}}},
				},
			},
		})
	}))
	defer server.Close()

	p := NewLocalProvider(server.URL, "llama3", time.Second)
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "chop_trees" {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
}

func TestLocalProviderClassifiesRateLimitStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("too many requests"))
	}))
	defer server.Close()

	p := NewLocalProvider(server.URL, "llama3", time.Second)
	_, err := p.Complete(context.Background(), llm.CompletionRequest{})
	pe, ok := err.(*llm.ProviderError)
	if !ok {
		t.Fatalf("error is not *llm.ProviderError: %v", err)
	}
	if pe.Kind != llm.KindRateLimited {
		t.Fatalf("kind = %v, want KindRateLimited", pe.Kind)
	}
}

func TestLocalProviderClassifiesServerErrorAsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewLocalProvider(server.URL, "llama3", time.Second)
	_, err := p.Complete(context.Background(), llm.CompletionRequest{})
	pe, ok := err.(*llm.ProviderError)
	if !ok {
		t.Fatalf("error is not *llm.ProviderError: %v", err)
	}
	if pe.Kind != llm.KindTransportFailure {
		t.Fatalf("kind = %v, want KindTransportFailure", pe.Kind)
	}
}

func TestLocalProviderRequiresConfiguredModel(t *testing.T) {
	p := NewLocalProvider("http://unused", "", time.Second)
	_, err := p.Complete(context.Background(), llm.CompletionRequest{})
	pe, ok := err.(*llm.ProviderError)
	if !ok || pe.Kind != llm.KindBadRequest {
		t.Fatalf("expected KindBadRequest, got %v", err)
	}
}
