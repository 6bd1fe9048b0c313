package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/syntax"
)

// changedSpan compares an edited tree with its re-parse and returns the
// character span covering every subtree that was not reused unchanged.
func changedSpan(content *Content, old, new *sitter.Node) (syntax.Span, bool) {
	var d treeDiff
	d.walk(old, new)
	if !d.found {
		return syntax.Span{}, false
	}
	return content.Span(int(d.start), int(d.end)), true
}

type treeDiff struct {
	start, end uint32
	found      bool
	marks      int
}

func (d *treeDiff) mark(n *sitter.Node) {
	d.marks++
	start, end := n.StartByte(), n.EndByte()
	if !d.found {
		d.start, d.end, d.found = start, end, true
		return
	}
	d.start = min(d.start, start)
	d.end = max(d.end, end)
}

func (d *treeDiff) walk(old, new *sitter.Node) {
	if new == nil || new.IsNull() {
		return
	}
	if old == nil || old.IsNull() || !sameShape(old, new) {
		d.mark(new)
		return
	}
	if !old.HasChanges() {
		return
	}
	count := int(new.ChildCount())
	if count == 0 {
		// An edited leaf keeps its shape but not its text.
		d.mark(new)
		return
	}
	marks := d.marks
	for i := 0; i < count; i++ {
		d.walk(old.Child(i), new.Child(i))
	}
	if d.marks == marks {
		// The edit fell between children, for instance inside a string
		// literal whose quotes were reused.
		d.mark(new)
	}
}

func sameShape(a, b *sitter.Node) bool {
	return a.Type() == b.Type() &&
		a.StartByte() == b.StartByte() &&
		a.EndByte() == b.EndByte() &&
		a.ChildCount() == b.ChildCount()
}
