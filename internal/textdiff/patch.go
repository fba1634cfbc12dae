// Package textdiff computes and re-applies textual patches between document
// versions. Diffing is delegated to diffmatchpatch; patches are kept as an
// explicit list of positioned edit operations so that patches from
// independently edited versions of the same base text can be concatenated and
// replayed with per-operation success reporting.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is a single edit operation against a base text: at byte offset Pos, the
// text Old is replaced by New. An insertion has empty Old; a deletion has
// empty New. Pos always refers to the base text the patch was computed from.
type Op struct {
	Pos int
	Old string
	New string
}

// String renders the operation compactly for conflict reports.
func (o Op) String() string {
	return fmt.Sprintf("@%d -%q +%q", o.Pos, o.Old, o.New)
}

// Patch is an ordered sequence of edit operations between two versions of a
// text. Operations within one computed patch are position-ascending;
// concatenated patches keep their segment order.
type Patch struct {
	Ops []Op
}

// Compute diffs old against new and returns the patch that transforms old
// into new. Adjacent delete/insert runs are folded into single replace
// operations.
func Compute(old, new string) Patch {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)

	var ops []Op
	pos := 0
	pending := Op{Pos: 0}
	flush := func() {
		if pending.Old != "" || pending.New != "" {
			ops = append(ops, pending)
		}
	}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			pos += len(d.Text)
			pending = Op{Pos: pos}
		case diffmatchpatch.DiffDelete:
			if pending.Old == "" && pending.New == "" {
				pending.Pos = pos
			}
			pending.Old += d.Text
			pos += len(d.Text)
		case diffmatchpatch.DiffInsert:
			if pending.Old == "" && pending.New == "" {
				pending.Pos = pos
			}
			pending.New += d.Text
		}
	}
	flush()
	return Patch{Ops: ops}
}

// Empty reports whether the patch has no operations.
func (p Patch) Empty() bool {
	return len(p.Ops) == 0
}

// Len returns the number of operations.
func (p Patch) Len() int {
	return len(p.Ops)
}

// Concat returns a new patch holding p's operations followed by q's. Both
// operand patches must have been computed against the same base text.
func (p Patch) Concat(q Patch) Patch {
	ops := make([]Op, 0, len(p.Ops)+len(q.Ops))
	ops = append(ops, p.Ops...)
	ops = append(ops, q.Ops...)
	return Patch{Ops: ops}
}

// appliedOp tracks an operation already spliced into the working text, in
// base-text coordinates, so later operations can be repositioned.
type appliedOp struct {
	pos    int // offset in the base text
	oldLen int
	delta  int // len(New) - len(Old)
}

// Apply replays the patch against base, which must be the text the
// operations' positions refer to. Operations are processed in list order.
// Each operation's position is shifted by the cumulative length change of
// previously applied operations that ended at or before it; the operation
// applies only if its Old text is still found exactly at the shifted
// position. The returned flags report, per operation, whether it applied
// cleanly; operations that did not are skipped.
func (p Patch) Apply(base string) (string, []bool) {
	applied := make([]bool, len(p.Ops))
	text := base
	var done []appliedOp

	for i, op := range p.Ops {
		adj := op.Pos
		ok := true
		for _, a := range done {
			if a.pos+a.oldLen <= op.Pos {
				// Earlier edit ended at or before this operation:
				// shift by its length change. Insertions at the same
				// point land before this operation.
				adj += a.delta
			} else if a.pos < op.Pos+len(op.Old) || a.pos == op.Pos {
				// Earlier edit touched this operation's range; the
				// anchor text can no longer be trusted positionally.
				ok = false
				break
			}
		}
		if !ok || adj < 0 || adj+len(op.Old) > len(text) || text[adj:adj+len(op.Old)] != op.Old {
			continue
		}
		text = text[:adj] + op.New + text[adj+len(op.Old):]
		applied[i] = true
		done = append(done, appliedOp{pos: op.Pos, oldLen: len(op.Old), delta: len(op.New) - len(op.Old)})
	}
	return text, applied
}

// Fragment returns the string form of the i'th operation.
func (p Patch) Fragment(i int) string {
	return p.Ops[i].String()
}

// String renders all operations, one per line.
func (p Patch) String() string {
	frags := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		frags[i] = op.String()
	}
	return strings.Join(frags, "\n")
}
