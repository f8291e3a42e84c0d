// Package executor applies ordered migration operations against the store,
// emitting progress to subscribers and persisting a durable history row per
// run.
package executor

import (
	"time"
)

// State is the lifecycle state of a migration run. Runs start in progress:
// the history row and the first status snapshot are written together.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Status is a frozen snapshot of a migration run handed to history and to
// progress subscribers. Progress is 0-100 and monotonically non-decreasing
// within a run.
type Status struct {
	TaskID      string
	TableName   string
	State       State
	Progress    int
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// ProgressFunc receives status snapshots at every transition. Delivery is
// synchronous and in registration order.
type ProgressFunc func(Status)
