// Package orchestrator coordinates concurrent multi-rule formatting: it
// collects diagnostics from every rule over a shared immutable workspace,
// lets each fixer rewrite the original independently, reconciles the
// divergent results per document with a patch-composition merge, and folds
// the merged texts back into a final workspace.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/refit/internal/lang"
	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// Options controls a single format run.
type Options struct {
	// SaveChanges enables the fix/merge phases. When false the run is
	// diagnostics-only: the input workspace is returned untouched.
	SaveChanges bool

	// TreatWarningsAsErrors makes warning diagnostics count as failures in
	// the run report.
	TreatWarningsAsErrors bool

	// Paths restricts analysis and fixing to the given documents.
	// Empty means every document in the workspace.
	Paths []workspace.DocID
}

// Engine runs the analyze → fix → merge → assemble pipeline over a workspace.
type Engine struct {
	rules    []rules.Rule
	logger   *slog.Logger
	progress *ProgressReporter

	collector *Collector
	fixer     *FixRunner
	merger    *Merger

	// verifier, when set, re-parses merged documents and reports syntax
	// errors that the originals did not have. Advisory only.
	verifier *lang.Verifier
}

// New creates an Engine wired with a Collector, FixRunner, Merger, and
// ProgressReporter. The rule list order is significant: it is the merge
// precedence order.
func New(ruleSet []rules.Rule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	progress := NewProgressReporter()
	return &Engine{
		rules:     ruleSet,
		logger:    logger,
		progress:  progress,
		collector: NewCollector(progress.Emit),
		fixer:     NewFixRunner(logger, progress.Emit),
		merger:    NewMerger(logger, progress.Emit),
	}
}

// SetVerifier enables post-merge syntax verification.
func (e *Engine) SetVerifier(v *lang.Verifier) {
	e.verifier = v
}

// Progress returns a channel that emits progress events.
func (e *Engine) Progress() <-chan ProgressEvent {
	return e.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when
// the engine is no longer needed.
func (e *Engine) Close() {
	e.progress.Close()
}

// Format runs the pipeline over ws and returns the resulting workspace plus
// a run report. With SaveChanges false the returned workspace is ws itself.
// An analyzer error or cancellation aborts the run; fixer failures and merge
// conflicts are contained and surface only in the report.
func (e *Engine) Format(ctx context.Context, ws *workspace.Workspace, opts Options) (*workspace.Workspace, *Report, error) {
	scope := opts.Paths
	if len(scope) == 0 {
		scope = ws.DocumentIDs()
	} else {
		// Paths may name documents the workspace never loaded; only the
		// intersection is scanned.
		known := make([]workspace.DocID, 0, len(scope))
		for _, id := range scope {
			if _, ok := ws.Document(id); ok {
				known = append(known, id)
			}
		}
		scope = known
	}

	report := newReport()
	report.DocsScanned = len(scope)

	byDoc, err := e.collector.Collect(ctx, ws, e.rules, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: analysis: %w", err)
	}
	report.addDiagnostics(byDoc)

	if !opts.SaveChanges {
		return ws, report, nil
	}

	candidates := e.fixer.Apply(ctx, ws, byDoc, e.rules)
	for _, cand := range candidates {
		if cand.Err != nil {
			report.RuleFailures = append(report.RuleFailures, RuleFailure{Rule: cand.Rule, Err: cand.Err})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	merged, conflicts, err := e.merger.Merge(ctx, ws, candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: merge: %w", err)
	}
	report.Conflicts = conflicts

	e.progress.Emit(ProgressEvent{Phase: PhaseAssemble, Subject: "workspace", Status: ProgressWorking})
	final, err := Assemble(ws, merged)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: assemble: %w", err)
	}
	report.DocsChanged = final.ChangedDocuments(ws)
	e.progress.Emit(ProgressEvent{Phase: PhaseAssemble, Subject: "workspace", Status: ProgressComplete})

	e.verifyMerged(ws, final, report)

	return final, report, nil
}

// verifyMerged re-parses every changed document and records the ones whose
// merged text introduced a syntax error. Verification failures are logged
// and skipped; they never fail the run.
func (e *Engine) verifyMerged(original, final *workspace.Workspace, report *Report) {
	if e.verifier == nil {
		return
	}
	for _, id := range report.DocsChanged {
		language := lang.Detect(id)
		if !e.verifier.Supports(language) {
			continue
		}
		before, _ := original.Document(id)
		after, _ := final.Document(id)
		introduced, err := e.verifier.IntroducedError(before.Text, after.Text, language)
		if err != nil {
			e.logger.Warn("syntax verification error", "doc", string(id), "error", err)
			continue
		}
		if introduced {
			e.logger.Warn("merged document has a syntax error the original did not",
				"doc", string(id), "language", string(language))
			report.SyntaxWarnings = append(report.SyntaxWarnings, id)
		}
	}
}
