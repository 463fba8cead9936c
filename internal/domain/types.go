package domain

import "time"

// RunStatus is the final state of an ingestion run.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunDeclined  RunStatus = "declined"
	RunFailed    RunStatus = "failed"
	RunRejected  RunStatus = "rejected"
	RunPartial   RunStatus = "partial"
	RunCompleted RunStatus = "completed"
)

// Run is one invocation of the product ingestion command.
type Run struct {
	ID         int64
	Title      string
	SKU        string
	Status     RunStatus
	ProductGID string
	VariantGID string
	StartedAt  time.Time
	FinishedAt *time.Time
}

type RunStep struct {
	ID        int64
	RunID     int64
	Step      string
	OK        bool
	Detail    string
	CreatedAt time.Time
}
