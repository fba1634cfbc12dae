package history

import (
	"context"
	"fmt"
	"time"
)

// NewRunID returns a unique, time-ordered run identifier.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("run-%s", now.UTC().Format("20060102-150405.000000000"))
}

// changeID produces a deterministic identifier for a change: "runID:doc".
func changeID(runID, doc string) string {
	return runID + ":" + doc
}

// conflictID produces a deterministic identifier for a conflict.
func conflictID(c ConflictRecord) string {
	return c.RunID + ":" + c.Doc + ":" + c.Rule + ":" + c.Fragment
}

// RecordRun writes a run together with its change and conflict records.
func RecordRun(ctx context.Context, store Store, run RunRecord, changes []ChangeRecord, conflicts []ConflictRecord) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("history: init schema: %w", err)
	}
	if err := store.AddRun(ctx, run); err != nil {
		return fmt.Errorf("history: add run: %w", err)
	}
	for _, c := range changes {
		if err := store.AddChange(ctx, c); err != nil {
			return fmt.Errorf("history: add change %s: %w", c.Doc, err)
		}
	}
	for _, c := range conflicts {
		if err := store.AddConflict(ctx, c); err != nil {
			return fmt.Errorf("history: add conflict %s: %w", c.Doc, err)
		}
	}
	return nil
}
