package session

// ToolCall is a structured tool invocation emitted by the assistant.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Input string `json:"input"` // compact JSON of the tool arguments
}

// ToolResult is the outcome of a tool call, supplied on the user side of the log.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

// Turn is a single reconstructed conversation turn (user or assistant).
type Turn struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	UUID        string       `json:"uuid,omitempty"`
}

// Metadata carries record counts from extraction, used for run statistics.
type Metadata struct {
	TotalRecords        int `json:"total_records"`
	ConversationRecords int `json:"conversation_records"`
}

// ExtractedSession is a fully reconstructed session with metadata.
type ExtractedSession struct {
	SessionID  string   `json:"session_id"`
	SourcePath string   `json:"source_path"`
	CWD        string   `json:"cwd,omitempty"`
	Turns      []Turn   `json:"turns"`
	Metadata   Metadata `json:"metadata"`
}
