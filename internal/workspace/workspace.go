package workspace

import (
	"fmt"
	"sort"
)

// Project is a structural grouping of documents within a workspace.
type Project struct {
	Name      string
	Documents []DocID
}

// Workspace is an immutable collection of documents grouped into projects.
// All transformations return a new Workspace; unchanged documents are shared
// between the original and the copy.
type Workspace struct {
	docs     map[DocID]Document
	projects []Project
}

// New builds a Workspace from the given projects and documents. Every
// document referenced by a project must be present in docs.
func New(projects []Project, docs []Document) (*Workspace, error) {
	m := make(map[DocID]Document, len(docs))
	for _, d := range docs {
		if _, ok := m[d.ID]; ok {
			return nil, fmt.Errorf("workspace: duplicate document %q", d.ID)
		}
		m[d.ID] = d
	}
	for _, p := range projects {
		for _, id := range p.Documents {
			if _, ok := m[id]; !ok {
				return nil, fmt.Errorf("workspace: project %q references unknown document %q", p.Name, id)
			}
		}
	}
	return &Workspace{docs: m, projects: projects}, nil
}

// Document returns the snapshot for the given identifier.
func (w *Workspace) Document(id DocID) (Document, bool) {
	d, ok := w.docs[id]
	return d, ok
}

// DocumentIDs returns all document identifiers in sorted order.
func (w *Workspace) DocumentIDs() []DocID {
	ids := make([]DocID, 0, len(w.docs))
	for id := range w.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Projects returns the project grouping.
func (w *Workspace) Projects() []Project {
	return w.projects
}

// Len returns the number of documents.
func (w *Workspace) Len() int {
	return len(w.docs)
}

// WithDocumentText returns a copy of the workspace in which the identified
// document carries the new text. Identity, encoding, and line-ending
// metadata are preserved; all other documents are shared with the receiver.
func (w *Workspace) WithDocumentText(id DocID, text string) (*Workspace, error) {
	doc, ok := w.docs[id]
	if !ok {
		return nil, fmt.Errorf("workspace: unknown document %q", id)
	}
	docs := make(map[DocID]Document, len(w.docs))
	for k, v := range w.docs {
		docs[k] = v
	}
	docs[id] = doc.WithText(text)
	return &Workspace{docs: docs, projects: w.projects}, nil
}

// ChangedDocuments returns, in sorted order, the identifiers of documents
// whose text differs from the same document in prior. A document whose text
// was reconstructed byte-identically is not reported. Documents absent from
// prior are ignored: fixers rewrite documents, they do not add or remove
// them.
func (w *Workspace) ChangedDocuments(prior *Workspace) []DocID {
	var changed []DocID
	for id, doc := range w.docs {
		p, ok := prior.docs[id]
		if !ok {
			continue
		}
		if doc.Text != p.Text {
			changed = append(changed, id)
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
	return changed
}
