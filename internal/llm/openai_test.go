package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete_OK(t *testing.T) {
	var gotReq openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer auth: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "generated text"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(server.URL), WithModel("test-model"))

	got, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "instructions"},
		{Role: RoleUser, Content: "question"},
	}, CompleteOptions{Temperature: 0.7, MaxTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "generated text" {
		t.Errorf("unexpected completion: %q", got)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("expected client default model, got %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.7 {
		t.Errorf("unexpected temperature: %v", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 100 {
		t.Errorf("unexpected max_tokens: %d", gotReq.MaxTokens)
	}
}

func TestComplete_OptionModelOverride(t *testing.T) {
	var gotReq openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(server.URL), WithModel("default-model"))

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}},
		CompleteOptions{Model: "override-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReq.Model != "override-model" {
		t.Errorf("expected per-call model override, got %q", gotReq.Model)
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(server.URL))

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, CompleteOptions{})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", WithBaseURL(server.URL))

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, CompleteOptions{})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
