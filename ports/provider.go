package ports

import "context"

// Usage represents raw token usage reported by a provider API
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// CompletionRequest carries one prompt to a completion provider
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionResponse is the provider's reply
type CompletionResponse struct {
	Content string
	Model   string
	Usage   *Usage
}

// CompletionProvider is implemented by each model backend
type CompletionProvider interface {
	// ID identifies the backend ("openai", "gemini") for logs and reports
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
