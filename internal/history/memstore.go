package history

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go slices. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu        sync.RWMutex
	runs      []RunRecord
	changes   []ChangeRecord
	conflicts []ConflictRecord
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// AddRun appends a run record.
func (m *MemStore) AddRun(_ context.Context, run RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

// AddChange appends a change record.
func (m *MemStore) AddChange(_ context.Context, change ChangeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
	return nil
}

// AddConflict appends a conflict record.
func (m *MemStore) AddConflict(_ context.Context, conflict ConflictRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = append(m.conflicts, conflict)
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (m *MemStore) RecentRuns(_ context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RunRecord, len(m.runs))
	copy(out, m.runs)
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RunChanges returns the documents changed by the given run, sorted by path.
func (m *MemStore) RunChanges(_ context.Context, runID string) ([]ChangeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ChangeRecord
	for _, c := range m.changes {
		if c.RunID == runID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Doc < out[j].Doc })
	return out, nil
}

// RunConflicts returns the conflicts raised by the given run.
func (m *MemStore) RunConflicts(_ context.Context, runID string) ([]ConflictRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ConflictRecord
	for _, c := range m.conflicts {
		if c.RunID == runID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Doc != out[j].Doc {
			return out[i].Doc < out[j].Doc
		}
		return out[i].Rule < out[j].Rule
	})
	return out, nil
}

// Stats returns record counts.
func (m *MemStore) Stats(_ context.Context) (*StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &StoreStats{
		RunCount:      len(m.runs),
		ChangeCount:   len(m.changes),
		ConflictCount: len(m.conflicts),
	}, nil
}
