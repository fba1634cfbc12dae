package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// DiagnosticsByDoc maps a document to the diagnostics accumulated for it
// across all rules.
type DiagnosticsByDoc map[workspace.DocID][]rules.Diagnostic

// Collector runs every rule's analyzer over a workspace, one concurrent task
// per project. Concurrency is bounded per project rather than per rule to
// keep resource use proportional to workspace shape.
type Collector struct {
	onProgress func(ProgressEvent)
}

// NewCollector creates a Collector. onProgress is called synchronously from
// each project goroutine; it may be nil.
func NewCollector(onProgress func(ProgressEvent)) *Collector {
	return &Collector{onProgress: onProgress}
}

// Collect runs each rule's Analyze against every project, restricted to the
// documents in scope, and aggregates the findings keyed by document. An
// analyzer error aborts the run: the errgroup's derived context cancels
// sibling projects, and the error propagates, since silently missing
// diagnostics would degrade the fix phase without notice.
//
// Per-document diagnostics are sorted by position and rule so the result is
// deterministic regardless of project scheduling.
func (c *Collector) Collect(ctx context.Context, ws *workspace.Workspace, ruleSet []rules.Rule, scope []workspace.DocID) (DiagnosticsByDoc, error) {
	scopeSet := make(map[workspace.DocID]bool, len(scope))
	for _, id := range scope {
		scopeSet[id] = true
	}

	projects := ws.Projects()
	results := make([][]rules.Diagnostic, len(projects))
	g, gctx := errgroup.WithContext(ctx)

	for i, project := range projects {
		docs := make([]workspace.DocID, 0, len(project.Documents))
		for _, id := range project.Documents {
			if scopeSet[id] {
				docs = append(docs, id)
			}
		}
		if len(docs) == 0 {
			continue
		}

		c.emit(ProgressEvent{Phase: PhaseAnalyze, Subject: project.Name, Status: ProgressPending})

		g.Go(func() error {
			c.emit(ProgressEvent{Phase: PhaseAnalyze, Subject: project.Name, Status: ProgressWorking})

			var found []rules.Diagnostic
			for _, rule := range ruleSet {
				if err := gctx.Err(); err != nil {
					return err
				}
				diags, err := rule.Analyze(gctx, ws, docs)
				if err != nil {
					c.emit(ProgressEvent{
						Phase:   PhaseAnalyze,
						Subject: project.Name,
						Status:  ProgressFailed,
						Message: err.Error(),
					})
					return fmt.Errorf("collector: rule %q on project %q: %w", rule.Name(), project.Name, err)
				}
				found = append(found, diags...)
			}

			results[i] = found
			c.emit(ProgressEvent{Phase: PhaseAnalyze, Subject: project.Name, Status: ProgressComplete})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byDoc := make(DiagnosticsByDoc)
	for _, found := range results {
		for _, d := range found {
			byDoc[d.Doc] = append(byDoc[d.Doc], d)
		}
	}
	for id := range byDoc {
		diags := byDoc[id]
		sort.Slice(diags, func(a, b int) bool {
			if diags[a].Line != diags[b].Line {
				return diags[a].Line < diags[b].Line
			}
			if diags[a].Col != diags[b].Col {
				return diags[a].Col < diags[b].Col
			}
			return diags[a].Rule < diags[b].Rule
		})
	}
	return byDoc, nil
}

// emit sends a progress event if a callback is registered.
func (c *Collector) emit(ev ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(ev)
	}
}
