package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// Candidate is one fixer's independently produced rewrite of the original
// workspace. Candidates are ordered by fixer execution index; that order is
// the merge precedence. When Err is non-nil the fixer failed and Result is
// the unchanged original.
type Candidate struct {
	Rule   string
	Result *workspace.Workspace
	Err    error
}

// FixRunner applies every rule's fixer against the same original workspace,
// one concurrent task per fixer. No fixer observes another's edits.
type FixRunner struct {
	logger     *slog.Logger
	onProgress func(ProgressEvent)
}

// NewFixRunner creates a FixRunner. onProgress may be nil.
func NewFixRunner(logger *slog.Logger, onProgress func(ProgressEvent)) *FixRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixRunner{logger: logger, onProgress: onProgress}
}

// Apply runs each rule's Fix in parallel against the original workspace,
// handing every fixer only the diagnostics its own analyzer reported. One
// result slot per fixer keeps the output ordered by registration index
// regardless of completion order.
//
// Fixer failures are isolated: an error or panic is logged and that fixer
// contributes an unchanged copy of the original, so one broken fixer cannot
// block the others. Cancellation is the exception: a canceled context
// degrades every remaining fixer.
func (f *FixRunner) Apply(ctx context.Context, ws *workspace.Workspace, byDoc DiagnosticsByDoc, ruleSet []rules.Rule) []Candidate {
	results := make([]Candidate, len(ruleSet))
	var g errgroup.Group

	for i, rule := range ruleSet {
		f.emit(ProgressEvent{Phase: PhaseFix, Subject: rule.Name(), Status: ProgressPending})

		g.Go(func() error {
			f.emit(ProgressEvent{Phase: PhaseFix, Subject: rule.Name(), Status: ProgressWorking})

			fixed, err := f.runOne(ctx, ws, byDoc, rule)
			if err != nil {
				f.logger.Warn("fixer failed; contributing no changes",
					"rule", rule.Name(), "error", err)
				f.emit(ProgressEvent{
					Phase:   PhaseFix,
					Subject: rule.Name(),
					Status:  ProgressFailed,
					Message: err.Error(),
				})
				results[i] = Candidate{Rule: rule.Name(), Result: ws, Err: err}
				return nil
			}

			results[i] = Candidate{Rule: rule.Name(), Result: fixed}
			f.emit(ProgressEvent{Phase: PhaseFix, Subject: rule.Name(), Status: ProgressComplete})
			return nil
		})
	}

	// Fixer errors are captured per slot, never returned.
	_ = g.Wait()
	return results
}

// runOne executes a single fixer with panic isolation.
func (f *FixRunner) runOne(ctx context.Context, ws *workspace.Workspace, byDoc DiagnosticsByDoc, rule rules.Rule) (fixed *workspace.Workspace, err error) {
	defer func() {
		if r := recover(); r != nil {
			fixed = nil
			err = fmt.Errorf("fixrunner: rule %q panicked: %v", rule.Name(), r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diags := diagnosticsForRule(byDoc, rule.Name())
	out, err := rule.Fix(ctx, ws, diags)
	if err != nil {
		return nil, fmt.Errorf("fixrunner: rule %q: %w", rule.Name(), err)
	}
	if out == nil {
		return nil, fmt.Errorf("fixrunner: rule %q returned nil workspace", rule.Name())
	}
	return out, nil
}

// diagnosticsForRule flattens the per-document diagnostics down to those the
// named rule reported, in deterministic document order.
func diagnosticsForRule(byDoc DiagnosticsByDoc, name string) []rules.Diagnostic {
	ids := make([]workspace.DocID, 0, len(byDoc))
	for id := range byDoc {
		ids = append(ids, id)
	}
	sortDocIDs(ids)

	var out []rules.Diagnostic
	for _, id := range ids {
		for _, d := range byDoc[id] {
			if d.Rule == name {
				out = append(out, d)
			}
		}
	}
	return out
}

// emit sends a progress event if a callback is registered.
func (f *FixRunner) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
