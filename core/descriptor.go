package core

import (
	"fmt"
	"time"
)

// RunStatus is the boundary-visible lifecycle state of an asynchronous run.
type RunStatus string

const (
	// RunPending means the run was accepted but has not started executing.
	RunPending RunStatus = "pending"
	// RunRunning means the run occupies a worker slot.
	RunRunning RunStatus = "running"
	// RunSucceeded means the run completed with a final answer.
	RunSucceeded RunStatus = "succeeded"
	// RunFailed means the run ended with an engine-level error.
	RunFailed RunStatus = "failed"
	// RunTimedOut means the wall-clock ceiling elapsed mid-run.
	RunTimedOut RunStatus = "timed_out"
	// RunCancelled means the caller cancelled the run.
	RunCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is one of the four end states.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunSucceeded, RunFailed, RunTimedOut, RunCancelled:
		return true
	}
	return false
}

// RunDescriptor is the status record the async boundary exposes for one run.
// It is created at submission, mutated only by the boundary, and transitions
// exactly once from pending to running and exactly once from running to a
// terminal state. Terminal descriptors are immutable.
type RunDescriptor struct {
	ID           string     `json:"id"`
	Status       RunStatus  `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	FinalMessage string     `json:"final_message,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// NewRunDescriptor builds a pending descriptor for the given run id.
func NewRunDescriptor(id string) RunDescriptor {
	return RunDescriptor{ID: id, Status: RunPending, SubmittedAt: time.Now().UTC()}
}

// Transition moves the descriptor to the next status, enforcing the legal
// lifecycle. It returns an error for any transition out of a terminal state,
// a jump from pending straight to succeeded or failed, or a repeat of the
// running transition. A pending run may go directly to cancelled (caller
// withdrew it) or timed_out (the wall-clock ceiling expired in the queue).
func (d *RunDescriptor) Transition(next RunStatus) error {
	switch {
	case d.Status.Terminal():
		return fmt.Errorf("run %s already terminal (%s)", d.ID, d.Status)
	case next == RunRunning && d.Status != RunPending:
		return fmt.Errorf("run %s cannot start from %s", d.ID, d.Status)
	case next.Terminal() && d.Status == RunPending && next != RunCancelled && next != RunTimedOut:
		return fmt.Errorf("run %s cannot finish before starting", d.ID)
	case next == RunPending:
		return fmt.Errorf("run %s cannot return to pending", d.ID)
	}
	now := time.Now().UTC()
	if next == RunRunning {
		d.StartedAt = &now
	}
	if next.Terminal() {
		d.FinishedAt = &now
	}
	d.Status = next
	return nil
}
