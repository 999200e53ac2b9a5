package core

import (
	"time"

	"github.com/google/uuid"
)

// ToolCallRecord captures one tool invocation: the structured request, the
// result payload or failure reason, and the observed latency. A record is
// created by the node issuing the call and is immutable once completed;
// conversation entries and RunState.ToolOutput hold references, not copies.
type ToolCallRecord struct {
	ID      string         `json:"id"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args,omitempty"`
	Result  any            `json:"result,omitempty"`
	Failure *Failure       `json:"failure,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// NewToolCallRecord starts a record for a call to the named tool.
func NewToolCallRecord(tool string, args map[string]any) *ToolCallRecord {
	return &ToolCallRecord{ID: uuid.NewString(), Tool: tool, Args: args}
}

// Failed reports whether the invocation ended in a failure.
func (r *ToolCallRecord) Failed() bool { return r != nil && r.Failure != nil }
