package rules

import (
	"context"
	"strings"

	"github.com/dusk-indust/refit/internal/workspace"
)

// TrailingSpaceName is the registry name of the trailing-whitespace rule.
const TrailingSpaceName = "trailingspace"

// TrailingSpace reports lines ending in spaces or tabs and fixes them by
// stripping the trailing run.
type TrailingSpace struct{}

// NewTrailingSpace creates the rule.
func NewTrailingSpace() *TrailingSpace {
	return &TrailingSpace{}
}

func (r *TrailingSpace) Name() string { return TrailingSpaceName }

// Analyze reports one diagnostic per offending line.
func (r *TrailingSpace) Analyze(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, id := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := ws.Document(id)
		if !ok {
			continue
		}
		for i, line := range strings.Split(doc.Text, "\n") {
			trimmed := strings.TrimRight(line, " \t")
			if trimmed == line {
				continue
			}
			out = append(out, Diagnostic{
				Doc: id, Line: i + 1, Col: len(trimmed) + 1,
				Severity: SevWarning, Rule: TrailingSpaceName,
				Message: "line has trailing whitespace",
			})
		}
	}
	return out, nil
}

// Fix strips trailing spaces and tabs from every line of each diagnosed
// document.
func (r *TrailingSpace) Fix(ctx context.Context, ws *workspace.Workspace, diags []Diagnostic) (*workspace.Workspace, error) {
	out := ws
	for _, id := range docsOf(diags) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := out.Document(id)
		if !ok {
			continue
		}
		lines := strings.Split(doc.Text, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight(line, " \t")
		}
		fixed := strings.Join(lines, "\n")
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
