package rules

import (
	"context"
	"strings"

	"github.com/dusk-indust/refit/internal/workspace"
)

// FinalNewlineName is the registry name of the final-newline rule.
const FinalNewlineName = "finalnewline"

// FinalNewline reports files that do not end with exactly one newline and
// fixes them by trimming or appending as needed. Empty documents are left
// alone.
type FinalNewline struct{}

// NewFinalNewline creates the rule.
func NewFinalNewline() *FinalNewline {
	return &FinalNewline{}
}

func (r *FinalNewline) Name() string { return FinalNewlineName }

// Analyze reports one diagnostic per offending document.
func (r *FinalNewline) Analyze(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, id := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := ws.Document(id)
		if !ok || doc.Text == "" {
			continue
		}
		text := doc.Text
		switch {
		case !strings.HasSuffix(text, "\n"):
			line := strings.Count(text, "\n") + 1
			col := len(text) - strings.LastIndexByte(text, '\n')
			out = append(out, Diagnostic{
				Doc: id, Line: line, Col: col,
				Severity: SevWarning, Rule: FinalNewlineName,
				Message: "file does not end with a newline",
			})
		case strings.HasSuffix(text, "\n\n"):
			out = append(out, Diagnostic{
				Doc: id, Line: strings.Count(text, "\n"), Col: 1,
				Severity: SevWarning, Rule: FinalNewlineName,
				Message: "file ends with multiple newlines",
			})
		}
	}
	return out, nil
}

// Fix rewrites every diagnosed document to end with exactly one newline.
func (r *FinalNewline) Fix(ctx context.Context, ws *workspace.Workspace, diags []Diagnostic) (*workspace.Workspace, error) {
	out := ws
	for _, id := range docsOf(diags) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := out.Document(id)
		if !ok || doc.Text == "" {
			continue
		}
		fixed := strings.TrimRight(doc.Text, "\n") + "\n"
		if fixed == doc.Text {
			continue
		}
		var err error
		if out, err = out.WithDocumentText(id, fixed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// docsOf returns the distinct document identifiers in the diagnostics,
// preserving first-appearance order.
func docsOf(diags []Diagnostic) []workspace.DocID {
	seen := make(map[workspace.DocID]bool, len(diags))
	var out []workspace.DocID
	for _, d := range diags {
		if !seen[d.Doc] {
			seen[d.Doc] = true
			out = append(out, d.Doc)
		}
	}
	return out
}
