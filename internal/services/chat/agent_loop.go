// Package chat implements the tool-driven map assistant conversation: an
// agent loop that lets the model call map tools, observes their results,
// and produces a final answer for the user.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/services/tools"
)

// AgentConfig configures the agent conversation loop
type AgentConfig struct {
	MaxTurns     int           // Maximum agent turns before stopping
	MaxToolCalls int           // Maximum tool calls per conversation
	Timeout      time.Duration // Overall timeout for agent conversation
}

// DefaultAgentConfig returns sensible defaults
func DefaultAgentConfig() *AgentConfig {
	return &AgentConfig{
		MaxTurns:     10,
		MaxToolCalls: 15,
		Timeout:      2 * time.Minute,
	}
}

// AgentLoop orchestrates the agent conversation
type AgentLoop struct {
	toolRouter *tools.ToolRouter
	llmService interfaces.LLMService
	logger     arbor.ILogger
	config     *AgentConfig
}

// NewAgentLoop creates a new agent conversation loop
func NewAgentLoop(
	toolRouter *tools.ToolRouter,
	llmService interfaces.LLMService,
	logger arbor.ILogger,
	config *AgentConfig,
) *AgentLoop {
	if config == nil {
		config = DefaultAgentConfig()
	}

	return &AgentLoop{
		toolRouter: toolRouter,
		llmService: llmService,
		logger:     logger,
		config:     config,
	}
}

// Execute runs the agent conversation loop. Intermediate thoughts and tool
// results are streamed via the streamFunc callback when one is provided.
// It returns the final answer and the number of tool calls executed.
func (a *AgentLoop) Execute(
	ctx context.Context,
	userMessage string,
	history []interfaces.Message,
	streamFunc func(*tools.StreamingMessage) error,
) (string, int, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	state := &tools.AgentState{
		ConversationID: uuid.New().String(),
		Messages:       []tools.AgentMessage{},
		ToolCalls:      []tools.ToolUse{},
		ToolResponses:  []tools.ToolResponse{},
		TurnCount:      0,
		MaxTurns:       a.config.MaxTurns,
		Complete:       false,
	}

	systemPrompt, err := a.buildSystemPrompt(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to build system prompt: %w", err)
	}

	state.Messages = append(state.Messages, tools.AgentMessage{
		Role:    "system",
		Content: systemPrompt,
	})
	for _, msg := range history {
		state.Messages = append(state.Messages, tools.AgentMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	state.Messages = append(state.Messages, tools.AgentMessage{
		Role:    "user",
		Content: userMessage,
	})

	a.logger.Debug().
		Str("conversation_id", state.ConversationID).
		Str("user_message", userMessage).
		Msg("Starting agent conversation loop")

	for state.TurnCount < state.MaxTurns && !state.Complete {
		select {
		case <-ctx.Done():
			return "", len(state.ToolCalls), fmt.Errorf("agent loop timeout after %v", time.Since(startTime))
		default:
		}

		state.TurnCount++

		a.logger.Debug().
			Int("turn", state.TurnCount).
			Int("messages", len(state.Messages)).
			Msg("Agent turn start")

		llmResponse, err := a.callLLM(ctx, state)
		if err != nil {
			return "", len(state.ToolCalls), fmt.Errorf("LLM call failed on turn %d: %w", state.TurnCount, err)
		}

		toolUse, isFinalAnswer := a.parseResponse(llmResponse)

		if isFinalAnswer || toolUse == nil {
			state.Complete = true

			if streamFunc != nil {
				streamFunc(&tools.StreamingMessage{
					Type:      "final_answer",
					Content:   llmResponse,
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}

			a.logger.Debug().
				Str("conversation_id", state.ConversationID).
				Int("turns", state.TurnCount).
				Int("tool_calls", len(state.ToolCalls)).
				Dur("duration", time.Since(startTime)).
				Msg("Agent conversation complete")

			return llmResponse, len(state.ToolCalls), nil
		}

		a.logger.Debug().
			Str("tool", toolUse.Name).
			Str("tool_use_id", toolUse.ID).
			Msg("Agent requested tool use")

		if len(state.ToolCalls) >= a.config.MaxToolCalls {
			return "", len(state.ToolCalls), fmt.Errorf("exceeded maximum tool calls (%d)", a.config.MaxToolCalls)
		}

		if streamFunc != nil {
			streamFunc(&tools.StreamingMessage{
				Type:      "thought",
				Content:   a.extractThought(llmResponse),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			streamFunc(&tools.StreamingMessage{
				Type:      "action",
				Content:   fmt.Sprintf("Using tool: %s", toolUse.Name),
				ToolUse:   toolUse,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}

		toolResponse := a.toolRouter.ExecuteTool(ctx, toolUse)

		state.ToolCalls = append(state.ToolCalls, *toolUse)
		state.ToolResponses = append(state.ToolResponses, *toolResponse)

		if streamFunc != nil {
			streamFunc(&tools.StreamingMessage{
				Type:       "observation",
				Content:    fmt.Sprintf("Tool result: %s", truncate(toolResponse.Content, 200)),
				ToolResult: toolResponse,
				Timestamp:  time.Now().Format(time.RFC3339),
				Metadata: map[string]interface{}{
					"is_error":       toolResponse.IsError,
					"content_length": len(toolResponse.Content),
				},
			})
		}

		state.Messages = append(state.Messages, tools.AgentMessage{
			Role:    "assistant",
			Content: llmResponse,
		})

		toolResultMsg := fmt.Sprintf("Tool '%s' returned:\n\n%s", toolUse.Name, toolResponse.Content)
		if toolResponse.IsError {
			toolResultMsg = fmt.Sprintf("Tool '%s' error:\n\n%s", toolUse.Name, toolResponse.Content)
		}

		state.Messages = append(state.Messages, tools.AgentMessage{
			Role:    "user",
			Content: toolResultMsg,
		})
	}

	return "", len(state.ToolCalls), fmt.Errorf("agent did not complete within %d turns", a.config.MaxTurns)
}

// buildSystemPrompt constructs the full system prompt with tool descriptions
func (a *AgentLoop) buildSystemPrompt(ctx context.Context) (string, error) {
	toolsSection, err := a.toolRouter.FormatToolsForPrompt(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to format tools: %w", err)
	}

	return AgentSystemPromptBase + "\n\n" + toolsSection, nil
}

// callLLM sends the conversation to the LLM and gets a response
func (a *AgentLoop) callLLM(ctx context.Context, state *tools.AgentState) (string, error) {
	messages := make([]interfaces.Message, len(state.Messages))
	for i, msg := range state.Messages {
		messages[i] = interfaces.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	return a.llmService.Chat(ctx, messages)
}

// parseResponse extracts tool use from the LLM response.
// Returns (toolUse, isFinalAnswer).
func (a *AgentLoop) parseResponse(response string) (*tools.ToolUse, bool) {
	jsonPattern := regexp.MustCompile("(?s)```json\\s*(\\{.*?\"tool_use\".*?\\})\\s*```")
	matches := jsonPattern.FindStringSubmatch(response)

	if len(matches) > 1 {
		var toolUseWrapper struct {
			ToolUse tools.ToolUse `json:"tool_use"`
		}
		if err := json.Unmarshal([]byte(matches[1]), &toolUseWrapper); err == nil && toolUseWrapper.ToolUse.Name != "" {
			return &toolUseWrapper.ToolUse, false
		}
	}

	// No tool use found; substantive text counts as a final answer
	if len(strings.TrimSpace(response)) > 0 {
		return nil, true
	}

	return nil, false
}

// extractThought extracts the text before a tool call JSON block
func (a *AgentLoop) extractThought(response string) string {
	loc := strings.Index(response, "```json")
	if loc > 0 {
		return strings.TrimSpace(response[:loc])
	}
	return response
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
