package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"speclens/ai"
	"speclens/ports"
)

func TestOpenAIProviderComplete(t *testing.T) {
	var receivedBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&receivedBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": `{"categories":[]}`}},
			},
			"usage": map[string]int{
				"prompt_tokens":     10,
				"completion_tokens": 5,
				"total_tokens":      15,
			},
		})
	}))
	defer server.Close()

	p := ai.NewOpenAIProviderWithClient("gpt-4o-mini", "test-key", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ports.CompletionRequest{
		System:      "You are an auditor.",
		Prompt:      "Audit this.",
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != `{"categories":[]}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", resp.Model)
	}
	if resp.Usage == nil || resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 5 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	format, ok := receivedBody["response_format"].(map[string]interface{})
	if !ok || format["type"] != "json_object" {
		t.Errorf("response_format not requested: %v", receivedBody["response_format"])
	}
	msgs, ok := receivedBody["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v", receivedBody["messages"])
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" {
		t.Errorf("first message role = %v", first["role"])
	}
}

func TestOpenAIProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	p := ai.NewOpenAIProviderWithClient("gpt-4o-mini", "test-key", server.URL, server.Client())
	_, err := p.Complete(context.Background(), ports.CompletionRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestOpenAIProviderNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := ai.NewOpenAIProviderWithClient("gpt-4o-mini", "test-key", server.URL, server.Client())
	_, err := p.Complete(context.Background(), ports.CompletionRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	p := ai.NewOpenAIProvider("gpt-4o-mini", "")
	if _, err := p.Complete(context.Background(), ports.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIProviderID(t *testing.T) {
	if got := ai.NewOpenAIProvider("gpt-4o-mini", "k").ID(); got != "openai:gpt-4o-mini" {
		t.Errorf("ID = %q", got)
	}
}
