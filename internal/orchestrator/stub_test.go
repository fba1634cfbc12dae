package orchestrator

import (
	"context"

	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// stubRule is a scriptable rule for orchestrator tests. Nil hooks default to
// "no diagnostics" and "no changes".
type stubRule struct {
	name    string
	analyze func(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]rules.Diagnostic, error)
	fix     func(ctx context.Context, ws *workspace.Workspace, diags []rules.Diagnostic) (*workspace.Workspace, error)
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Analyze(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]rules.Diagnostic, error) {
	if s.analyze == nil {
		return nil, nil
	}
	return s.analyze(ctx, ws, docs)
}

func (s stubRule) Fix(ctx context.Context, ws *workspace.Workspace, diags []rules.Diagnostic) (*workspace.Workspace, error) {
	if s.fix == nil {
		return ws, nil
	}
	return s.fix(ctx, ws, diags)
}

// rewriteRule returns a stub whose fixer sets the given document to text.
func rewriteRule(name string, id workspace.DocID, text string) stubRule {
	return stubRule{
		name: name,
		fix: func(_ context.Context, ws *workspace.Workspace, _ []rules.Diagnostic) (*workspace.Workspace, error) {
			return ws.WithDocumentText(id, text)
		},
	}
}
