package core

// Meta keys used by the controller and sub-graphs to coordinate across node
// visits. Values are plain strings so RunState stays trivially serializable.
const (
	// MetaHandledBy records which sub-graph last completed a pass
	// ("research", "email" or "direct").
	MetaHandledBy = "handled_by"
	// MetaNeedsAnotherPass is set by a sub-graph that wants the controller
	// to dispatch it again; absence makes controller re-entry idempotent.
	MetaNeedsAnotherPass = "needs_another_pass"
	// MetaAwaitingConfirmation marks an email run that stopped short of
	// sending because no user confirmation was present.
	MetaAwaitingConfirmation = "awaiting_confirmation"
	// MetaEmailDraft holds the composed draft body between nodes.
	MetaEmailDraft = "email_draft"
	// MetaEmailRecipient holds the resolved recipient between nodes.
	MetaEmailRecipient = "email_recipient"
	// MetaEmailSubject holds the composed subject between nodes.
	MetaEmailSubject = "email_subject"
)

// MarkSet is the conventional truthy value for boolean meta keys.
const MarkSet = "true"

// RunState is the single mutable record threaded through one run. Each graph
// node receives the state produced by its predecessor, mutates its own copy
// and hands it on together with a next-node selection; the engine guarantees
// no two nodes touch the same state concurrently.
//
// Invariants:
//   - Conversation never shrinks or reorders within a run.
//   - NextStep is written only by routing decisions; the empty string is the
//     terminal value.
//   - RouteTrace length is bounded by the engine's step ceiling.
//   - Err short-circuits normal routing into the completion path.
type RunState struct {
	Conversation []Message         `json:"conversation"`
	NextStep     string            `json:"next_step,omitempty"`
	ToolOutput   *ToolCallRecord   `json:"tool_output,omitempty"`
	RouteTrace   []string          `json:"route_trace,omitempty"`
	Err          *Failure          `json:"error,omitempty"`
	Meta         map[string]string `json:"meta,omitempty"`
}

// NewRunState builds a state seeded with the submitted user message.
func NewRunState(userMessage string) RunState {
	return RunState{
		Conversation: []Message{NewUserMessage(userMessage)},
		Meta:         map[string]string{},
	}
}

// Append adds a message to the conversation.
func (s *RunState) Append(msg Message) {
	s.Conversation = append(s.Conversation, msg)
}

// LastUserMessage returns the text of the most recent user message, or the
// empty string if none exists.
func (s *RunState) LastUserMessage() string {
	for i := len(s.Conversation) - 1; i >= 0; i-- {
		if s.Conversation[i].Role == RoleUser {
			return s.Conversation[i].Text
		}
	}
	return ""
}

// LastAgentMessage returns the text of the most recent agent message, or the
// empty string if none exists.
func (s *RunState) LastAgentMessage() string {
	for i := len(s.Conversation) - 1; i >= 0; i-- {
		if s.Conversation[i].Role == RoleAgent {
			return s.Conversation[i].Text
		}
	}
	return ""
}

// SetMeta records a coordination value, allocating the map lazily so that
// zero-value states behave.
func (s *RunState) SetMeta(key, value string) {
	if s.Meta == nil {
		s.Meta = map[string]string{}
	}
	s.Meta[key] = value
}

// GetMeta returns the value for key or the empty string.
func (s *RunState) GetMeta(key string) string {
	if s.Meta == nil {
		return ""
	}
	return s.Meta[key]
}

// ClearMeta removes a coordination key.
func (s *RunState) ClearMeta(key string) {
	if s.Meta != nil {
		delete(s.Meta, key)
	}
}

// Marked reports whether a boolean meta key is set.
func (s *RunState) Marked(key string) bool { return s.GetMeta(key) == MarkSet }

// Visits counts how often node appears in the route trace. Used by tests and
// by sub-graphs that bound their own re-entry.
func (s *RunState) Visits(node string) int {
	n := 0
	for _, v := range s.RouteTrace {
		if v == node {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe for independent mutation. ToolOutput and the
// ToolCall references inside the conversation are shared intentionally: call
// records are immutable once completed.
func (s RunState) Clone() RunState {
	clone := s
	clone.Conversation = make([]Message, len(s.Conversation))
	copy(clone.Conversation, s.Conversation)
	clone.RouteTrace = make([]string, len(s.RouteTrace))
	copy(clone.RouteTrace, s.RouteTrace)
	if s.Meta != nil {
		clone.Meta = make(map[string]string, len(s.Meta))
		for k, v := range s.Meta {
			clone.Meta[k] = v
		}
	}
	return clone
}
