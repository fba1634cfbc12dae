package rules

import (
	"context"
	"strings"

	"github.com/dusk-indust/refit/internal/workspace"
)

// EOLNormalizeName is the registry name of the line-ending rule.
const EOLNormalizeName = "eolnormalize"

// EOLNormalize reports stray carriage returns left in the normalized text.
// The loader records each document's dominant line-ending form and stores
// text LF-normalized, so any remaining CR marks a mixed-ending file (lone CR
// line breaks, or CRLF in a file that is predominantly LF). The fix rewrites
// them as plain LF; the document's recorded form is restored on save.
type EOLNormalize struct{}

// NewEOLNormalize creates the rule.
func NewEOLNormalize() *EOLNormalize {
	return &EOLNormalize{}
}

func (r *EOLNormalize) Name() string { return EOLNormalizeName }

// Analyze reports one diagnostic per line containing a carriage return.
func (r *EOLNormalize) Analyze(ctx context.Context, ws *workspace.Workspace, docs []workspace.DocID) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, id := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := ws.Document(id)
		if !ok {
			continue
		}
		line := 1
		for i := 0; i < len(doc.Text); i++ {
			switch doc.Text[i] {
			case '\r':
				out = append(out, Diagnostic{
					Doc: id, Line: line, Col: colAt(doc.Text, i),
					Severity: SevWarning, Rule: EOLNormalizeName,
					Message: "inconsistent line ending",
				})
				if i+1 < len(doc.Text) && doc.Text[i+1] == '\n' {
					i++ // CRLF counts as one line break
				}
				line++
			case '\n':
				line++
			}
		}
	}
	return out, nil
}

// Fix replaces every remaining CRLF or lone CR with LF in each diagnosed
// document.
func (r *EOLNormalize) Fix(ctx context.Context, ws *workspace.Workspace, diags []Diagnostic) (*workspace.Workspace, error) {
	out := ws
	for _, id := range docsOf(diags) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := out.Document(id)
		if !ok {
			continue
		}
		fixed := strings.ReplaceAll(doc.Text, "\r\n", "\n")
		fixed = strings.ReplaceAll(fixed, "\r", "\n")
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

// colAt returns the 1-based column of byte offset i within its line.
func colAt(text string, i int) int {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	return i - start + 1
}
