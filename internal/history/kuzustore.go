//go:build cgo

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path, so run history survives across sessions. KuzuDB
// creates the leaf directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Run(
		id STRING,
		started_at STRING,
		root STRING,
		docs_scanned INT64,
		docs_changed INT64,
		diagnostics INT64,
		conflicts INT64,
		check_only BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Change(
		id STRING,
		doc STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Conflict(
		id STRING,
		doc STRING,
		rule STRING,
		fragment STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CHANGED(FROM Run TO Change)`,
	`CREATE REL TABLE IF NOT EXISTS RAISED(FROM Run TO Conflict)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddRun inserts a Run node.
func (s *KuzuStore) AddRun(_ context.Context, run RunRecord) error {
	return s.exec(
		`CREATE (r:Run {
			id: $id,
			started_at: $started,
			root: $root,
			docs_scanned: $scanned,
			docs_changed: $changed,
			diagnostics: $diags,
			conflicts: $conflicts,
			check_only: $check
		})`,
		map[string]any{
			"id":        run.ID,
			"started":   run.StartedAt.UTC().Format(time.RFC3339Nano),
			"root":      run.Root,
			"scanned":   int64(run.DocsScanned),
			"changed":   int64(run.DocsChanged),
			"diags":     int64(run.Diagnostics),
			"conflicts": int64(run.Conflicts),
			"check":     run.CheckOnly,
		},
	)
}

// AddChange inserts a Change node linked to its run.
func (s *KuzuStore) AddChange(_ context.Context, change ChangeRecord) error {
	if err := s.exec(
		"CREATE (c:Change {id: $id, doc: $doc})",
		map[string]any{
			"id":  changeID(change.RunID, change.Doc),
			"doc": change.Doc,
		},
	); err != nil {
		return err
	}
	return s.exec(
		`MATCH (r:Run {id: $run}), (c:Change {id: $id})
		 CREATE (r)-[:CHANGED]->(c)`,
		map[string]any{
			"run": change.RunID,
			"id":  changeID(change.RunID, change.Doc),
		},
	)
}

// AddConflict inserts a Conflict node linked to its run.
func (s *KuzuStore) AddConflict(_ context.Context, conflict ConflictRecord) error {
	id := conflictID(conflict)
	if err := s.exec(
		"CREATE (c:Conflict {id: $id, doc: $doc, rule: $rule, fragment: $fragment})",
		map[string]any{
			"id":       id,
			"doc":      conflict.Doc,
			"rule":     conflict.Rule,
			"fragment": conflict.Fragment,
		},
	); err != nil {
		return err
	}
	return s.exec(
		`MATCH (r:Run {id: $run}), (c:Conflict {id: $id})
		 CREATE (r)-[:RAISED]->(c)`,
		map[string]any{
			"run": conflict.RunID,
			"id":  id,
		},
	)
}

// ---------- Read operations ----------

// RecentRuns returns up to limit runs, most recent first.
func (s *KuzuStore) RecentRuns(_ context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.query(
		`MATCH (r:Run)
		 RETURN r.id, r.started_at, r.root, r.docs_scanned, r.docs_changed,
		        r.diagnostics, r.conflicts, r.check_only
		 ORDER BY r.started_at DESC
		 LIMIT $lim`,
		map[string]any{"lim": int64(limit)},
	)
	if err != nil {
		return nil, err
	}
	out := make([]RunRecord, 0, len(rows))
	for _, r := range rows {
		started, _ := time.Parse(time.RFC3339Nano, toString(r[1]))
		out = append(out, RunRecord{
			ID:          toString(r[0]),
			StartedAt:   started,
			Root:        toString(r[2]),
			DocsScanned: toInt(r[3]),
			DocsChanged: toInt(r[4]),
			Diagnostics: toInt(r[5]),
			Conflicts:   toInt(r[6]),
			CheckOnly:   toBool(r[7]),
		})
	}
	return out, nil
}

// RunChanges returns the documents changed by the given run.
func (s *KuzuStore) RunChanges(_ context.Context, runID string) ([]ChangeRecord, error) {
	rows, err := s.query(
		`MATCH (r:Run {id: $run})-[:CHANGED]->(c:Change)
		 RETURN c.doc ORDER BY c.doc`,
		map[string]any{"run": runID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]ChangeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ChangeRecord{RunID: runID, Doc: toString(r[0])})
	}
	return out, nil
}

// RunConflicts returns the conflicts raised by the given run.
func (s *KuzuStore) RunConflicts(_ context.Context, runID string) ([]ConflictRecord, error) {
	rows, err := s.query(
		`MATCH (r:Run {id: $run})-[:RAISED]->(c:Conflict)
		 RETURN c.doc, c.rule, c.fragment ORDER BY c.doc, c.rule`,
		map[string]any{"run": runID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]ConflictRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ConflictRecord{
			RunID:    runID,
			Doc:      toString(r[0]),
			Rule:     toString(r[1]),
			Fragment: toString(r[2]),
		})
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of all node tables.
func (s *KuzuStore) Stats(_ context.Context) (*StoreStats, error) {
	runs, err := s.countTable("Run")
	if err != nil {
		return nil, err
	}
	changes, err := s.countTable("Change")
	if err != nil {
		return nil, err
	}
	conflicts, err := s.countTable("Conflict")
	if err != nil {
		return nil, err
	}
	return &StoreStats{
		RunCount:      runs,
		ChangeCount:   changes,
		ConflictCount: conflicts,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
