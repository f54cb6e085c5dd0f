package tools

// Tool describes a map tool exposed to the agent
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolList represents a list of available tools
type ToolList struct {
	Tools []Tool `json:"tools"`
}

// ContentBlock represents a block of tool result content
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallResult represents the result of a tool call
type CallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// Agent-specific types for the conversation loop

// AgentMessage represents a message in the agent conversation
type AgentMessage struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // Message content
}

// ToolUse represents a tool call by the agent
type ToolUse struct {
	ID        string                 `json:"id"`        // Unique ID for this tool call
	Name      string                 `json:"name"`      // Tool name
	Arguments map[string]interface{} `json:"arguments"` // Tool arguments
}

// ToolResponse represents the result of a tool execution
type ToolResponse struct {
	ToolUseID string `json:"tool_use_id"` // References the ToolUse ID
	Content   string `json:"content"`     // Tool result content
	IsError   bool   `json:"is_error"`    // Whether this is an error response
}

// AgentState represents the current state of the agent conversation
type AgentState struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []AgentMessage `json:"messages"`
	ToolCalls      []ToolUse      `json:"tool_calls"`
	ToolResponses  []ToolResponse `json:"tool_responses"`
	TurnCount      int            `json:"turn_count"`
	MaxTurns       int            `json:"max_turns"`
	Complete       bool           `json:"complete"`
}

// StreamingMessage represents a real-time update during agent execution
type StreamingMessage struct {
	Type       string                 `json:"type"`                  // "thought", "action", "observation", "final_answer", "error"
	Content    string                 `json:"content"`               // Message content
	ToolUse    *ToolUse               `json:"tool_use,omitempty"`    // Tool being called
	ToolResult *ToolResponse          `json:"tool_result,omitempty"` // Tool execution result
	Timestamp  string                 `json:"timestamp"`             // ISO8601 timestamp
	Metadata   map[string]interface{} `json:"metadata,omitempty"`    // Additional context
}
