package syntax

import (
	"fmt"
	"strings"
)

// OutlineKind classifies an outline item.
type OutlineKind int

const (
	KindContainer OutlineKind = iota
	KindFunction
	KindMark
	KindHeading
	KindValue
	KindAttribute
	KindSeparator
)

var outlineKindNames = [...]string{
	KindContainer: "container",
	KindFunction:  "function",
	KindMark:      "mark",
	KindHeading:   "heading",
	KindValue:     "value",
	KindAttribute: "attribute",
	KindSeparator: "separator",
}

func (k OutlineKind) String() string {
	if k < 0 || int(k) >= len(outlineKindNames) {
		return fmt.Sprintf("OutlineKind(%d)", int(k))
	}
	return outlineKindNames[k]
}

// ParseOutlineKind resolves a kind by name. An empty name means a plain value.
func ParseOutlineKind(name string) (OutlineKind, bool) {
	if name == "" {
		return KindValue, true
	}
	for i, n := range outlineKindNames {
		if n == name {
			return OutlineKind(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k OutlineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutlineKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseOutlineKind(string(text))
	if !ok {
		return fmt.Errorf("unknown outline kind %q", string(text))
	}
	*k = parsed
	return nil
}

// Indent is either a nesting level or the literal leading whitespace of the
// line an item was found on.
type Indent struct {
	Level   int
	Literal string
	literal bool
}

// IndentLevel returns an indent expressed as a nesting depth.
func IndentLevel(level int) Indent {
	return Indent{Level: level}
}

// IndentString returns an indent expressed as literal whitespace.
func IndentString(s string) Indent {
	return Indent{Literal: s, literal: true}
}

// IsLiteral reports whether the indent carries literal whitespace.
func (i Indent) IsLiteral() bool { return i.literal }

// Render returns the indent as text, using unit once per nesting level.
func (i Indent) Render(unit string) string {
	if i.literal {
		return i.Literal
	}
	return strings.Repeat(unit, i.Level)
}

// OutlineItem is a navigable structural landmark in a document.
type OutlineItem struct {
	Title  string
	Span   Span
	Kind   OutlineKind
	Indent Indent
}

// IsSeparator reports whether the item is a titleless visual divider.
func (o OutlineItem) IsSeparator() bool {
	return o.Kind == KindSeparator
}

func (o OutlineItem) String() string {
	if o.IsSeparator() {
		return fmt.Sprintf("%s---- %s", o.Indent.Render("  "), o.Span)
	}
	return fmt.Sprintf("%s%s %s %s", o.Indent.Render("  "), o.Kind, o.Title, o.Span)
}

// NextItem returns the index of the first non-separator item starting after
// location, or -1.
func NextItem(items []OutlineItem, location int) int {
	for i, item := range items {
		if item.IsSeparator() {
			continue
		}
		if item.Span.Lower > location {
			return i
		}
	}
	return -1
}

// PreviousItem returns the index of the last non-separator item that ends
// before location, or -1.
func PreviousItem(items []OutlineItem, location int) int {
	for i := len(items) - 1; i >= 0; i-- {
		if !items[i].IsSeparator() && items[i].Span.Upper < location {
			return i
		}
	}
	return -1
}

// ItemAt returns the index of the innermost non-separator item whose span
// contains location, or -1.
func ItemAt(items []OutlineItem, location int) int {
	found := -1
	for i, item := range items {
		if item.IsSeparator() {
			continue
		}
		if item.Span.Lower > location {
			break
		}
		if item.Span.Contains(location) {
			found = i
		}
	}
	return found
}
