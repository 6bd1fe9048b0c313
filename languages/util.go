package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeText returns the text of a node, or "" for a nil node.
func NodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(content)
}

// FieldText returns the text of a node's field child.
func FieldText(node *sitter.Node, field string, content []byte) string {
	if node == nil {
		return ""
	}
	return NodeText(node.ChildByFieldName(field), content)
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// CollapseSpace joins the whitespace separated fields of s with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
