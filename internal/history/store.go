// Package history persists format-run outcomes so past runs can be inspected
// from the CLI. Writes are best-effort: a store failure is logged by the
// caller and never fails a format run.
package history

import (
	"context"
	"io"
	"time"
)

// RunRecord summarizes one format run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	Root        string
	DocsScanned int
	DocsChanged int
	Diagnostics int
	Conflicts   int
	CheckOnly   bool
}

// ChangeRecord marks one document rewritten by a run.
type ChangeRecord struct {
	RunID string
	Doc   string
}

// ConflictRecord is one dropped patch fragment from a run.
type ConflictRecord struct {
	RunID    string
	Doc      string
	Rule     string
	Fragment string
}

// StoreStats holds table counts for the store.
type StoreStats struct {
	RunCount      int
	ChangeCount   int
	ConflictCount int
}

// Store is the interface for the run-history backend.
// Implementations: KuzuStore (persistent), MemStore (testing).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddRun(ctx context.Context, run RunRecord) error
	AddChange(ctx context.Context, change ChangeRecord) error
	AddConflict(ctx context.Context, conflict ConflictRecord) error

	// Read operations.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	RunChanges(ctx context.Context, runID string) ([]ChangeRecord, error)
	RunConflicts(ctx context.Context, runID string) ([]ConflictRecord, error)

	// Stats.
	Stats(ctx context.Context) (*StoreStats, error)
}
