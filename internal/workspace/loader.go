package workspace

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// utf8BOM is the byte order mark stripped from document text on load.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls which files become workspace documents.
type LoadOptions struct {
	// IncludeExts lists file extensions (with leading dot) to load.
	// Empty means DefaultIncludeExts.
	IncludeExts []string

	// ExcludeDirs lists directory names skipped during the walk.
	// ".git" is always skipped.
	ExcludeDirs []string
}

// DefaultIncludeExts are the extensions loaded when none are configured.
var DefaultIncludeExts = []string{".go", ".py", ".rs", ".ts", ".tsx", ".md", ".txt", ".yml", ".yaml", ".json"}

// Load walks root and builds a workspace from the files it finds. Each
// top-level directory becomes one project; files directly under root are
// grouped into a project named ".". BOMs are stripped and CRLF is normalized
// to LF, with both recorded on the document so Save can restore them.
func Load(root string, opts LoadOptions) (*Workspace, error) {
	exts := opts.IncludeExts
	if len(exts) == 0 {
		exts = DefaultIncludeExts
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}
	excludeSet := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excludeSet[d] = true
	}

	byProject := make(map[string][]DocID)
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || excludeSet[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !extSet[filepath.Ext(path)] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil // skip unreadable files
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		doc := decode(DocID(rel), data)
		docs = append(docs, doc)

		project := "."
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			project = rel[:i]
		}
		byProject[project] = append(byProject[project], doc.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: walk %s: %w", root, err)
	}

	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Strings(names)

	projects := make([]Project, 0, len(names))
	for _, name := range names {
		ids := byProject[name]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		projects = append(projects, Project{Name: name, Documents: ids})
	}

	return New(projects, docs)
}

// decode builds a Document from raw file bytes, recording BOM and line-ending
// form before normalizing the text.
func decode(id DocID, data []byte) Document {
	enc := EncodingUTF8
	if bytes.HasPrefix(data, utf8BOM) {
		enc = EncodingUTF8BOM
		data = data[len(utf8BOM):]
	}

	eol := LineEndingLF
	crlf := bytes.Count(data, []byte("\r\n"))
	lf := bytes.Count(data, []byte("\n")) - crlf
	if crlf > lf {
		eol = LineEndingCRLF
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return Document{ID: id, Text: text, Encoding: enc, LineEnding: eol}
}

// Save writes the given documents of ws back under root, restoring each
// document's recorded encoding and line-ending form.
func Save(ws *Workspace, ids []DocID, root string) error {
	for _, id := range ids {
		doc, ok := ws.Document(id)
		if !ok {
			return fmt.Errorf("workspace: save: unknown document %q", id)
		}
		path := filepath.Join(root, filepath.FromSlash(string(id)))
		if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
			return fmt.Errorf("workspace: save %s: %w", id, err)
		}
	}
	return nil
}
