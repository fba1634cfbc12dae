// Package lang detects source languages and verifies that edited document
// text still parses. Verification is advisory: the merge engine uses it to
// warn when a reconciled document picked up a syntax error its original did
// not have.
package lang

import (
	"fmt"
	"path"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/refit/internal/workspace"
)

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// extToLanguage maps file extensions to languages.
var extToLanguage = map[string]Language{
	".go":  LangGo,
	".py":  LangPython,
	".rs":  LangRust,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
}

// Detect returns the language of a document based on its extension.
func Detect(id workspace.DocID) Language {
	if lang, ok := extToLanguage[path.Ext(string(id))]; ok {
		return lang
	}
	return LangUnknown
}

// Verifier parses document text with tree-sitter grammars to check for
// syntax errors. A new tree-sitter parser is created per call, so a Verifier
// is safe for concurrent use.
type Verifier struct {
	languages map[Language]*tree_sitter.Language
}

// NewVerifier creates a Verifier with Go, TypeScript, Python, and Rust
// grammars registered.
func NewVerifier() *Verifier {
	return &Verifier{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// Supports reports whether a grammar is registered for the language.
func (v *Verifier) Supports(lang Language) bool {
	_, ok := v.languages[lang]
	return ok
}

// HasSyntaxError parses text with the grammar for lang and reports whether
// the resulting tree contains an error node.
func (v *Verifier) HasSyntaxError(text string, lang Language) (bool, error) {
	tsLang, ok := v.languages[lang]
	if !ok {
		return false, fmt.Errorf("lang: unsupported language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return false, fmt.Errorf("lang: set language %s: %w", lang, err)
	}

	tree := parser.Parse([]byte(text), nil)
	if tree == nil {
		return false, fmt.Errorf("lang: tree-sitter returned nil tree")
	}
	defer tree.Close()

	return tree.RootNode().HasError(), nil
}

// IntroducedError reports whether edited text has a syntax error that the
// original text did not. Unsupported languages verify as clean.
func (v *Verifier) IntroducedError(original, edited string, lang Language) (bool, error) {
	if !v.Supports(lang) {
		return false, nil
	}
	after, err := v.HasSyntaxError(edited, lang)
	if err != nil || !after {
		return false, err
	}
	before, err := v.HasSyntaxError(original, lang)
	if err != nil {
		return false, err
	}
	return !before, nil
}
