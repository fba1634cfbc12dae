package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/refit/internal/textdiff"
	"github.com/dusk-indust/refit/internal/workspace"
)

// Merger reconciles the candidate workspaces produced by independent fixers
// into one merged text per changed document. All candidates of a document
// derive from the identical original snapshot; merging composes each
// candidate's patch against that original and reports the fragments that no
// longer apply.
type Merger struct {
	logger     *slog.Logger
	onProgress func(ProgressEvent)
}

// NewMerger creates a Merger. onProgress may be nil.
func NewMerger(logger *slog.Logger, onProgress func(ProgressEvent)) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger, onProgress: onProgress}
}

// candidateText is one fixer's edited snapshot of a single document.
type candidateText struct {
	rule string
	text string
}

// Merge reconciles the candidates against the original workspace. It returns
// the merged text per changed document plus a report of every dropped patch
// fragment. Documents are merged in parallel, one task per document; the
// outcome depends only on fixer registration order, never on scheduling.
//
// A document rewritten byte-identically is not treated as changed. A document
// changed by exactly one fixer takes that fixer's text without reduction.
func (m *Merger) Merge(ctx context.Context, original *workspace.Workspace, candidates []Candidate) (map[workspace.DocID]string, []ConflictReport, error) {
	// Steps 1 and 2: detect each candidate's changed documents and group the
	// edited snapshots by document, preserving fixer-list order.
	grouped := make(map[workspace.DocID][]candidateText)
	for _, cand := range candidates {
		for _, id := range cand.Result.ChangedDocuments(original) {
			doc, ok := cand.Result.Document(id)
			if !ok {
				return nil, nil, fmt.Errorf("merger: candidate %q lost document %q", cand.Rule, id)
			}
			grouped[id] = append(grouped[id], candidateText{rule: cand.Rule, text: doc.Text})
		}
	}

	ids := make([]workspace.DocID, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sortDocIDs(ids)

	// Step 3: pairwise reduction, one task per document.
	type docMerge struct {
		text      string
		conflicts []ConflictReport
	}
	results := make([]docMerge, len(ids))
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m.emit(ProgressEvent{Phase: PhaseMerge, Subject: string(id), Status: ProgressWorking})

			orig, ok := original.Document(id)
			if !ok {
				return fmt.Errorf("merger: original lost document %q", id)
			}
			text, conflicts := reduceCandidates(orig.Text, grouped[id], id)
			results[i] = docMerge{text: text, conflicts: conflicts}

			m.emit(ProgressEvent{Phase: PhaseMerge, Subject: string(id), Status: ProgressComplete})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := make(map[workspace.DocID]string, len(ids))
	var conflicts []ConflictReport
	for i, id := range ids {
		merged[id] = results[i].text
		conflicts = append(conflicts, results[i].conflicts...)
	}
	for _, c := range conflicts {
		m.logger.Warn("merge conflict: edit dropped",
			"doc", string(c.Doc), "rule", c.Rule, "fragment", c.Fragment)
	}
	return merged, conflicts, nil
}

// reduceCandidates folds a document's candidate versions into one text by
// repeatedly merging the last two candidates until a single one remains.
//
// Each round diffs the original O against the last candidate A and the
// second-to-last candidate B, appends B's operations after A's, and reapplies
// the combined patch to O. Operations whose anchor text no longer matches are
// dropped and reported; because A's operations replay first, the
// later-registered fixer wins on overlapping edits. With three or more
// candidates the reduction order makes the result sensitive to fixer
// registration order; it stays deterministic for a fixed rule list.
func reduceCandidates(original string, cands []candidateText, id workspace.DocID) (string, []ConflictReport) {
	work := make([]candidateText, len(cands))
	copy(work, cands)

	var conflicts []ConflictReport
	for len(work) > 1 {
		a := work[len(work)-1]
		b := work[len(work)-2]

		patchA := textdiff.Compute(original, a.text)
		patchB := textdiff.Compute(original, b.text)
		combined := patchA.Concat(patchB)

		text, applied := combined.Apply(original)
		for i, ok := range applied {
			if ok {
				continue
			}
			owner := a.rule
			if i >= patchA.Len() {
				owner = b.rule
			}
			conflicts = append(conflicts, ConflictReport{
				Doc:      id,
				Rule:     owner,
				Fragment: combined.Fragment(i),
			})
		}

		merged := candidateText{rule: b.rule + "+" + a.rule, text: text}
		work = append(work[:len(work)-2], merged)
	}

	if len(work) == 0 {
		// No fixer touched the document: the original passes through.
		return original, nil
	}
	return work[0].text, conflicts
}

// sortDocIDs orders document identifiers lexicographically in place.
func sortDocIDs(ids []workspace.DocID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// emit sends a progress event if a callback is registered.
func (m *Merger) emit(ev ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(ev)
	}
}
