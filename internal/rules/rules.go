// Package rules defines the format-rule plugin surface: a rule analyzes
// documents and reports diagnostics, and fixes the diagnostics it reported by
// rewriting documents into a new workspace copy. Rules are independent of one
// another; the orchestrator runs them in parallel against the same original
// workspace and merges their edits afterwards.
package rules

import (
	"context"
	"fmt"

	"github.com/dusk-indust/refit/internal/workspace"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a reported issue at a specific location in a document.
// Line and Col are 1-based.
type Diagnostic struct {
	Doc      workspace.DocID
	Line     int
	Col      int
	Severity Severity
	Rule     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", d.Doc, d.Line, d.Col, d.Severity, d.Message, d.Rule)
}

// Rule is an analyzer/fixer pair. Analyze inspects the given documents of a
// workspace and reports issues; Fix resolves the diagnostics this rule
// reported by returning a new workspace with zero or more documents
// rewritten. Fix must read only from the workspace it is handed and must not
// retain or mutate it.
type Rule interface {
	Name() string
	Analyze(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]Diagnostic, error)
	Fix(ctx context.Context, ws *workspace.Workspace, diags []Diagnostic) (*workspace.Workspace, error)
}
