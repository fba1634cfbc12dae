package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalNewline_MissingNewline_Diagnosed(t *testing.T) {
	ws := singleDoc(t, "one\ntwo")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, SevWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "does not end with a newline")
}

func TestFinalNewline_MultipleTrailingNewlines_Diagnosed(t *testing.T) {
	ws := singleDoc(t, "one\n\n\n")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "multiple newlines")
}

func TestFinalNewline_WellFormed_NoDiagnostics(t *testing.T) {
	ws := singleDoc(t, "one\ntwo\n")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestFinalNewline_EmptyDocument_Ignored(t *testing.T) {
	ws := singleDoc(t, "")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestFinalNewline_Fix_AppendsMissingNewline(t *testing.T) {
	ws := singleDoc(t, "one\ntwo")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)

	fixed, err := r.Fix(context.Background(), ws, diags)
	require.NoError(t, err)
	doc, _ := fixed.Document("doc.txt")
	assert.Equal(t, "one\ntwo\n", doc.Text)
}

func TestFinalNewline_Fix_TrimsExtraNewlines(t *testing.T) {
	ws := singleDoc(t, "one\n\n\n")
	r := NewFinalNewline()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)

	fixed, err := r.Fix(context.Background(), ws, diags)
	require.NoError(t, err)
	doc, _ := fixed.Document("doc.txt")
	assert.Equal(t, "one\n", doc.Text)
}

func TestFinalNewline_Fix_NoDiagnostics_ReturnsSameWorkspace(t *testing.T) {
	ws := singleDoc(t, "clean\n")
	r := NewFinalNewline()

	fixed, err := r.Fix(context.Background(), ws, nil)
	require.NoError(t, err)
	assert.Same(t, ws, fixed, "nothing to fix means no copy")
}
