// Package llm provides interfaces and implementations for chat completion clients.
package llm

import (
	"context"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem marks instructions for the model.
	RoleSystem Role = "system"

	// RoleUser marks messages written by the end user.
	RoleUser Role = "user"

	// RoleAssistant marks messages previously generated by the model.
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation, oldest first in a history slice.
type Message struct {
	Role    Role
	Content string
}

// CompleteOptions configures a chat completion request.
type CompleteOptions struct {
	// Model specifies the chat model to use (e.g., "gpt-4-turbo-preview").
	Model string

	// Temperature controls randomness in generation (0.0 = deterministic).
	Temperature float32

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int
}

// LLM defines the interface for chat completion clients.
type LLM interface {
	// Complete sends an ordered message sequence to the model and returns
	// the generated text. It blocks until the full response is received
	// or an error occurs.
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
}
