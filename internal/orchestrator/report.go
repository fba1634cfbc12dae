package orchestrator

import (
	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// ConflictReport records a patch fragment that could not be reapplied while
// reconciling one document's candidate versions. The edit it carried was
// dropped; conflicts are warnings, not failures.
type ConflictReport struct {
	Doc      workspace.DocID
	Rule     string // fixer whose fragment was dropped
	Fragment string
}

// RuleFailure records a fixer that failed or panicked during the fix phase.
// Its contribution degraded to "no changes"; other fixers were unaffected.
type RuleFailure struct {
	Rule string
	Err  error
}

// Report aggregates the outcome of one format run.
type Report struct {
	DocsScanned           int
	DocsChanged           []workspace.DocID
	Diagnostics           DiagnosticsByDoc
	DiagnosticsBySeverity map[string]int
	Conflicts             []ConflictReport
	RuleFailures          []RuleFailure

	// SyntaxWarnings lists documents whose merged text picked up a syntax
	// error the original did not have.
	SyntaxWarnings []workspace.DocID
}

// newReport creates a Report with initialized maps.
func newReport() *Report {
	return &Report{
		Diagnostics:           make(DiagnosticsByDoc),
		DiagnosticsBySeverity: make(map[string]int),
	}
}

// addDiagnostics folds collected diagnostics into the report.
func (r *Report) addDiagnostics(byDoc DiagnosticsByDoc) {
	for id, diags := range byDoc {
		r.Diagnostics[id] = diags
		for _, d := range diags {
			r.DiagnosticsBySeverity[d.Severity.String()]++
		}
	}
}

// TotalDiagnostics returns the number of diagnostics across all documents.
func (r *Report) TotalDiagnostics() int {
	n := 0
	for _, diags := range r.Diagnostics {
		n += len(diags)
	}
	return n
}

// HasFailures reports whether the run should be treated as failed:
// error-severity diagnostics always count, and warnings count when
// treatWarningsAsErrors is set.
func (r *Report) HasFailures(treatWarningsAsErrors bool) bool {
	if r.DiagnosticsBySeverity[rules.SevError.String()] > 0 {
		return true
	}
	return treatWarningsAsErrors && r.DiagnosticsBySeverity[rules.SevWarning.String()] > 0
}
