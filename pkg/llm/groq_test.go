package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meetwise-team/meetwise/pkg/config"
)

func TestGroqComplete_Success(t *testing.T) {
	// Mock Groq server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %s", got)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Model != "test-model" {
			t.Fatalf("unexpected model %s", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("expected system+user messages, got %+v", payload.Messages)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello from groq"}},
			},
		})
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: ts.URL}, "test-model")

	out, err := client.Complete(context.Background(), CompletionRequest{
		System: "you are terse",
		Prompt: "say hello",
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out != "hello from groq" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestGroqComplete_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: ts.URL}, "test-model")

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Fatalf("429 should be retryable, got %v", err)
	}
}

func TestGroqComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "test-key", BaseURL: ts.URL}, "test-model")

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGroqName(t *testing.T) {
	client := NewGroqClient(&config.GroqConfig{APIKey: "k"}, "llama-3.1-70b-versatile")
	if got := client.Name(); got != "groq:llama-3.1-70b-versatile" {
		t.Fatalf("unexpected name %s", got)
	}
}
