package core

// Role identifies the author class of a conversation message.
type Role string

const (
	// RoleUser marks messages submitted by the end user.
	RoleUser Role = "user"
	// RoleAgent marks messages produced by the assistant (controller or a
	// sub-graph node).
	RoleAgent Role = "agent"
	// RoleTool marks messages carrying the outcome of a tool invocation.
	RoleTool Role = "tool"
)

// Message is a single role-tagged entry in a run's conversation. The
// conversation is append-only within a run; entries are never reordered or
// removed once added.
//
// ToolCall is a reference to the originating call record, not a copy: the
// record is owned by the node that issued it and is immutable once completed.
type Message struct {
	Role     Role            `json:"role"`
	Text     string          `json:"text"`
	ToolCall *ToolCallRecord `json:"tool_call,omitempty"`
}

// NewUserMessage builds a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewAgentMessage builds an assistant-authored text message.
func NewAgentMessage(text string) Message {
	return Message{Role: RoleAgent, Text: text}
}

// NewToolMessage builds a tool-authored message referencing a completed call
// record. Text carries a short human-readable rendering of the outcome.
func NewToolMessage(text string, rec *ToolCallRecord) Message {
	return Message{Role: RoleTool, Text: text, ToolCall: rec}
}
