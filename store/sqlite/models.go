package sqlite

import (
	"time"

	"github.com/localmind-ai/localmind/core"
)

// runRecord holds one run's full state as a JSON document. Conversations stay
// opaque to SQL; everything queryable lives on the descriptor table.
type runRecord struct {
	RunID     string    `gorm:"primaryKey;size:64"`
	State     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

func (runRecord) TableName() string { return "runs" }

// descriptorRecord mirrors core.RunDescriptor column by column so status
// polls and dashboard queries never touch the state blob.
type descriptorRecord struct {
	RunID        string     `gorm:"primaryKey;size:64"`
	Status       string     `gorm:"size:16;not null;index"`
	SubmittedAt  time.Time  `gorm:"not null;index"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	FinalMessage string     `gorm:"type:text"`
	Error        string     `gorm:"type:text"`
}

func (descriptorRecord) TableName() string { return "run_descriptors" }

func descriptorFromCore(d core.RunDescriptor) descriptorRecord {
	return descriptorRecord{
		RunID:        d.ID,
		Status:       string(d.Status),
		SubmittedAt:  d.SubmittedAt,
		StartedAt:    d.StartedAt,
		FinishedAt:   d.FinishedAt,
		FinalMessage: d.FinalMessage,
		Error:        d.Error,
	}
}

func (r descriptorRecord) toCore() core.RunDescriptor {
	return core.RunDescriptor{
		ID:           r.RunID,
		Status:       core.RunStatus(r.Status),
		SubmittedAt:  r.SubmittedAt,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		FinalMessage: r.FinalMessage,
		Error:        r.Error,
	}
}
