package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

// edit is one pending replacement of a byte range with new text. A pure
// insertion has start == end. Edits are collected during read-only tree
// walks and applied to the source in a single final pass, so traversal
// never observes a mutated tree.
type edit struct {
	start uint
	end   uint
	text  string
}

// applyEdits produces the output text from the source and the collected
// edits. Rules are constructed so that no two edits overlap; an overlap is
// a catalog bug, and the later edit is rejected (reported by index) rather
// than allowed to corrupt the output.
func applyEdits(src []byte, edits []edit) (string, []int) {
	if len(edits) == 0 {
		return string(src), nil
	}

	ordered := make([]edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].start != ordered[j].start {
			return ordered[i].start < ordered[j].start
		}
		return ordered[i].end < ordered[j].end
	})

	var rejected []int
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)

	cursor := uint(0)
	for _, e := range ordered {
		if e.start < cursor || e.end > uint(len(src)) {
			rejected = append(rejected, indexOf(edits, e))
			continue
		}
		out.Write(src[cursor:e.start])
		out.WriteString(e.text)
		cursor = e.end
	}
	out.Write(src[cursor:])

	return out.String(), rejected
}

func indexOf(edits []edit, e edit) int {
	for i, cand := range edits {
		if cand == e {
			return i
		}
	}
	return -1
}

// describeRejected renders a warning for edits dropped by the overlap
// guard.
func describeRejected(rejected []int) string {
	return fmt.Sprintf("dropped %d conflicting rewrite(s); output kept the earlier rewrite", len(rejected))
}
