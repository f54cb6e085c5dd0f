package chat

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/services/tools"
)

// ChatService implements the map assistant chat surface on top of the
// agent loop.
type ChatService struct {
	agentLoop  *AgentLoop
	llmService interfaces.LLMService
	model      string
	logger     arbor.ILogger
}

// NewChatService creates a new chat service
func NewChatService(agentLoop *AgentLoop, llmService interfaces.LLMService, model string, logger arbor.ILogger) *ChatService {
	return &ChatService{
		agentLoop:  agentLoop,
		llmService: llmService,
		model:      model,
		logger:     logger,
	}
}

// Chat runs the agent loop for a single user message. Map layers are
// rendered as a side effect of the tool calls the agent makes.
func (s *ChatService) Chat(ctx context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	if req == nil || req.Message == "" {
		return nil, fmt.Errorf("chat request requires a message")
	}

	s.logger.Debug().
		Str("message", req.Message).
		Int("history", len(req.History)).
		Msg("Processing chat request")

	answer, toolCalls, err := s.agentLoop.Execute(ctx, req.Message, req.History, nil)
	if err != nil {
		return nil, fmt.Errorf("agent execution failed: %w", err)
	}

	return &interfaces.ChatResponse{
		Message:   answer,
		ToolCalls: toolCalls,
		Model:     s.model,
	}, nil
}

// ChatStream runs the agent loop and streams intermediate updates
// (thoughts, tool actions, observations) through streamFunc.
func (s *ChatService) ChatStream(ctx context.Context, req *interfaces.ChatRequest, streamFunc func(*tools.StreamingMessage) error) (*interfaces.ChatResponse, error) {
	if req == nil || req.Message == "" {
		return nil, fmt.Errorf("chat request requires a message")
	}

	answer, toolCalls, err := s.agentLoop.Execute(ctx, req.Message, req.History, streamFunc)
	if err != nil {
		return nil, fmt.Errorf("agent execution failed: %w", err)
	}

	return &interfaces.ChatResponse{
		Message:   answer,
		ToolCalls: toolCalls,
		Model:     s.model,
	}, nil
}

// HealthCheck verifies the chat service is operational
func (s *ChatService) HealthCheck(ctx context.Context) error {
	return s.llmService.HealthCheck(ctx)
}

// Ensure ChatService implements the ChatService interface
var _ interfaces.ChatService = (*ChatService)(nil)
