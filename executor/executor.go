package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schemakit/schemakit/history"
	"github.com/schemakit/schemakit/plan"
	"github.com/schemakit/schemakit/store"
)

// Executor runs ordered migration operations. It assumes a single logical
// writer per table; callers serialize concurrent migrations of the same
// table. Operations are never applied in parallel within one run since
// later operations may depend on the structural effect of earlier ones.
type Executor struct {
	store    store.Executor
	ledger   *history.Ledger
	versions *history.VersionLedger

	mu        sync.Mutex
	nextSubID int
	subs      []subscriber
}

type subscriber struct {
	id int
	fn ProgressFunc
}

// New creates an executor writing history through the given ledgers.
func New(st store.Executor, ledger *history.Ledger, versions *history.VersionLedger) *Executor {
	return &Executor{store: st, ledger: ledger, versions: versions}
}

// AddProgressCallback registers a subscriber and returns its handle.
func (e *Executor) AddProgressCallback(fn ProgressFunc) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSubID++
	e.subs = append(e.subs, subscriber{id: e.nextSubID, fn: fn})
	return e.nextSubID
}

// RemoveProgressCallback deregisters a subscriber by handle.
func (e *Executor) RemoveProgressCallback(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

// notify delivers a status snapshot to every subscriber in registration
// order. A panicking subscriber is isolated so it cannot corrupt the run.
func (e *Executor) notify(st Status) {
	e.mu.Lock()
	subs := make([]subscriber, len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() { _ = recover() }()
			s.fn(st)
		}()
	}
}

// Execute applies the operations strictly in order, recording the run in
// history before the first operation so failed runs leave an audit trail.
// On the first failing operation the run stops, history and status are
// marked failed, and the error propagates; already-applied operations are
// not rolled back. Rewrite-marked operations are rejected up front: those
// migrations must go through the zero-downtime rewriter.
func (e *Executor) Execute(ctx context.Context, tableName string, ops []plan.MigrationOperation, taskID string) error {
	for _, op := range ops {
		if op.RequiresRewrite() {
			return fmt.Errorf("operation on %s requires table recreation; use the zero-downtime rewriter", tableName)
		}
	}

	if taskID == "" {
		taskID = fmt.Sprintf("migration_%d", time.Now().UnixMilli())
	}

	fromVersion, err := e.versions.CurrentVersion(ctx, tableName)
	if err != nil {
		return err
	}
	serialized, err := history.SerializeOperations(ops)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	status := Status{
		TaskID:    taskID,
		TableName: tableName,
		State:     StateInProgress,
		Progress:  0,
		StartedAt: startedAt,
	}

	rec := &history.MigrationRecord{
		TaskID:      taskID,
		TableName:   tableName,
		FromVersion: fromVersion,
		ToVersion:   fromVersion + 1,
		Operations:  serialized,
		State:       history.StateInProgress,
		StartedAt:   startedAt,
	}
	if err := e.ledger.Insert(ctx, rec); err != nil {
		return err
	}

	e.notify(status)

	for i, op := range ops {
		if _, err := e.store.ExecuteUpdate(ctx, op.SQL); err != nil {
			completedAt := time.Now()
			status.State = StateFailed
			status.CompletedAt = completedAt
			status.Error = err.Error()
			if hErr := e.ledger.MarkFailed(ctx, taskID, completedAt, err.Error()); hErr != nil {
				e.notify(status)
				return fmt.Errorf("operation %d failed: %v (history update also failed: %w)", i+1, err, hErr)
			}
			e.notify(status)
			return fmt.Errorf("operation %d (%s) failed: %w", i+1, op.Type, err)
		}
		status.Progress = (i + 1) * 100 / len(ops)
		e.notify(status)
	}

	completedAt := time.Now()
	status.State = StateCompleted
	status.Progress = 100
	status.CompletedAt = completedAt
	if err := e.ledger.MarkCompleted(ctx, taskID, completedAt); err != nil {
		return err
	}
	e.notify(status)
	return nil
}
