package interfaces

import (
	"context"
)

// ChatRequest represents a chat request to the map assistant
type ChatRequest struct {
	// User's message
	Message string `json:"message"`

	// Conversation history (optional)
	History []Message `json:"history,omitempty"`

	// System prompt (optional, defaults will be used if not provided)
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ChatResponse represents the response from a chat request
type ChatResponse struct {
	// Generated response
	Message string `json:"message"`

	// Number of map tool calls executed while answering
	ToolCalls int `json:"tool_calls"`

	// Model used
	Model string `json:"model"`
}

// ChatService provides the tool-driven map assistant conversation
type ChatService interface {
	// Chat sends a message and receives a response; map tool results are
	// pushed to the renderer as a side effect of the agent loop.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// HealthCheck verifies the chat service is operational
	HealthCheck(ctx context.Context) error
}
