package llm

import "context"

// Provider is a single generative-model backend. Implementations return the
// raw assistant text; parsing and contract validation belong to the caller.
type Provider interface {
	// Complete sends a prompt and returns the assistant content.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name identifies the concrete model for telemetry.
	Name() string
}

// CompletionRequest is the provider-agnostic shape of a completion call
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Embedder produces semantic embedding vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
