package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

func collectorWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(
		[]workspace.Project{
			{Name: "api", Documents: []workspace.DocID{"api/a.txt", "api/b.txt"}},
			{Name: "web", Documents: []workspace.DocID{"web/c.txt"}},
		},
		[]workspace.Document{
			{ID: "api/a.txt", Text: "alpha"},
			{ID: "api/b.txt", Text: "beta"},
			{ID: "web/c.txt", Text: "gamma"},
		},
	)
	require.NoError(t, err)
	return ws
}

// diagEveryDoc reports one diagnostic per document it is handed.
func diagEveryDoc(name string, line int) stubRule {
	return stubRule{
		name: name,
		analyze: func(_ context.Context, _ *workspace.Workspace, docs []workspace.DocID) ([]rules.Diagnostic, error) {
			out := make([]rules.Diagnostic, 0, len(docs))
			for _, id := range docs {
				out = append(out, rules.Diagnostic{
					Doc: id, Line: line, Col: 1,
					Severity: rules.SevWarning, Rule: name, Message: "found",
				})
			}
			return out, nil
		},
	}
}

func TestCollect_AggregatesAcrossProjectsAndRules(t *testing.T) {
	ws := collectorWorkspace(t)
	c := NewCollector(nil)

	byDoc, err := c.Collect(context.Background(), ws,
		[]rules.Rule{diagEveryDoc("r1", 1), diagEveryDoc("r2", 2)}, ws.DocumentIDs())
	require.NoError(t, err)

	require.Len(t, byDoc, 3, "every document should carry diagnostics")
	for _, id := range ws.DocumentIDs() {
		diags := byDoc[id]
		require.Len(t, diags, 2, "one diagnostic per rule for %s", id)
		assert.Equal(t, "r1", diags[0].Rule)
		assert.Equal(t, "r2", diags[1].Rule)
	}
}

func TestCollect_ScopeRestrictsDocuments(t *testing.T) {
	ws := collectorWorkspace(t)
	c := NewCollector(nil)

	byDoc, err := c.Collect(context.Background(), ws,
		[]rules.Rule{diagEveryDoc("r1", 1)}, []workspace.DocID{"api/a.txt"})
	require.NoError(t, err)

	assert.Len(t, byDoc, 1)
	assert.Contains(t, byDoc, workspace.DocID("api/a.txt"))
	assert.NotContains(t, byDoc, workspace.DocID("web/c.txt"),
		"documents outside the scope must not be analyzed")
}

func TestCollect_AnalyzerError_Propagates(t *testing.T) {
	ws := collectorWorkspace(t)
	c := NewCollector(nil)

	boom := errors.New("parse exploded")
	broken := stubRule{
		name: "broken",
		analyze: func(context.Context, *workspace.Workspace, []workspace.DocID) ([]rules.Diagnostic, error) {
			return nil, boom
		},
	}

	_, err := c.Collect(context.Background(), ws, []rules.Rule{broken}, ws.DocumentIDs())
	require.Error(t, err, "an analyzer error must abort the run")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestCollect_DiagnosticsSortedWithinDocument(t *testing.T) {
	ws := collectorWorkspace(t)
	c := NewCollector(nil)

	// Report positions out of order; Collect must sort them.
	scrambled := stubRule{
		name: "scrambled",
		analyze: func(_ context.Context, _ *workspace.Workspace, docs []workspace.DocID) ([]rules.Diagnostic, error) {
			if docs[0] != "api/a.txt" {
				return nil, nil
			}
			return []rules.Diagnostic{
				{Doc: "api/a.txt", Line: 3, Col: 1, Rule: "scrambled"},
				{Doc: "api/a.txt", Line: 1, Col: 5, Rule: "scrambled"},
				{Doc: "api/a.txt", Line: 1, Col: 2, Rule: "scrambled"},
			}, nil
		},
	}

	byDoc, err := c.Collect(context.Background(), ws, []rules.Rule{scrambled}, ws.DocumentIDs())
	require.NoError(t, err)

	diags := byDoc["api/a.txt"]
	require.Len(t, diags, 3)
	assert.Equal(t, []int{1, 1, 3}, []int{diags[0].Line, diags[1].Line, diags[2].Line})
	assert.Equal(t, 2, diags[0].Col, "same-line diagnostics sort by column")
}

func TestCollect_CanceledContext_ReturnsError(t *testing.T) {
	ws := collectorWorkspace(t)
	c := NewCollector(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, ws, []rules.Rule{diagEveryDoc("r1", 1)}, ws.DocumentIDs())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_EmitsProgressPerProject(t *testing.T) {
	ws := collectorWorkspace(t)

	var mu sync.Mutex
	var events []ProgressEvent
	c := NewCollector(func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	_, err := c.Collect(context.Background(), ws, []rules.Rule{diagEveryDoc("r1", 1)}, ws.DocumentIDs())
	require.NoError(t, err)

	complete := map[string]bool{}
	for _, ev := range events {
		assert.Equal(t, PhaseAnalyze, ev.Phase)
		if ev.Status == ProgressComplete {
			complete[ev.Subject] = true
		}
	}
	assert.True(t, complete["api"], "the api project should report completion")
	assert.True(t, complete["web"], "the web project should report completion")
}
