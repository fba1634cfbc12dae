package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEOLNormalize_ReportsStrayCarriageReturns(t *testing.T) {
	ws := singleDoc(t, "one\r\ntwo\nthree\rfour\n")
	r := NewEOLNormalize()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	require.Len(t, diags, 2, "one diagnostic per CR, with CRLF counted once")
	assert.Equal(t, 1, diags[0].Line)
	assert.Equal(t, 4, diags[0].Col)
	assert.Equal(t, 3, diags[1].Line)
	assert.Equal(t, 6, diags[1].Col)
}

func TestEOLNormalize_LFOnly_NoDiagnostics(t *testing.T) {
	ws := singleDoc(t, "one\ntwo\n")
	r := NewEOLNormalize()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestEOLNormalize_Fix_RewritesAllForms(t *testing.T) {
	ws := singleDoc(t, "one\r\ntwo\nthree\rfour\n")
	r := NewEOLNormalize()

	diags, err := r.Analyze(context.Background(), ws, ws.DocumentIDs())
	require.NoError(t, err)

	fixed, err := r.Fix(context.Background(), ws, diags)
	require.NoError(t, err)
	doc, _ := fixed.Document("doc.txt")
	assert.Equal(t, "one\ntwo\nthree\nfour\n", doc.Text)
}

func TestColAt_FirstLineAndLaterLines(t *testing.T) {
	text := "abc\ndef"
	assert.Equal(t, 1, colAt(text, 0))
	assert.Equal(t, 3, colAt(text, 2))
	assert.Equal(t, 1, colAt(text, 4))
	assert.Equal(t, 3, colAt(text, 6))
}
