package orchestrator

import (
	"fmt"

	"github.com/dusk-indust/refit/internal/workspace"
)

// Assemble folds merged document texts back into a copy of the original
// workspace. It is a pure fold: the result is identical to original except
// that each merged document carries its merged text, with the original's
// encoding and line-ending metadata, never a fixer's.
func Assemble(original *workspace.Workspace, merged map[workspace.DocID]string) (*workspace.Workspace, error) {
	ids := make([]workspace.DocID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sortDocIDs(ids)

	out := original
	for _, id := range ids {
		next, err := out.WithDocumentText(id, merged[id])
		if err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
		out = next
	}
	return out, nil
}
