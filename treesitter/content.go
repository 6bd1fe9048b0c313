// Package treesitter drives incremental tree-sitter parsing for highlighting
// and outlines. Offsets on its API are character offsets; the translation to
// the byte offsets tree-sitter works with happens in Content.
package treesitter

import (
	"fmt"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/syntax"
)

// Point is a zero-based row and byte column.
type Point struct {
	Row    int
	Column int
}

func (p Point) sitter() sitter.Point {
	return sitter.Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

// EditDescriptor describes one text mutation in bytes and points.
type EditDescriptor struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// InputEdit converts the descriptor for Tree.Edit.
func (d EditDescriptor) InputEdit() sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  uint32(d.StartByte),
		OldEndIndex: uint32(d.OldEndByte),
		NewEndIndex: uint32(d.NewEndByte),
		StartPoint:  d.StartPoint.sitter(),
		OldEndPoint: d.OldEndPoint.sitter(),
		NewEndPoint: d.NewEndPoint.sitter(),
	}
}

// Content mirrors the document text with line start indexes in characters
// and in bytes.
type Content struct {
	text       []rune
	lineStarts []int
	lineBytes  []int
}

// NewContent returns a mirror of text.
func NewContent(text string) *Content {
	c := &Content{}
	c.Reset(text)
	return c
}

// Reset replaces the mirrored text and rebuilds the line index.
func (c *Content) Reset(text string) {
	c.text = []rune(text)
	c.lineStarts = []int{0}
	c.lineBytes = []int{0}
	b := 0
	for i, r := range c.text {
		b += utf8.RuneLen(r)
		if r == '\n' {
			c.lineStarts = append(c.lineStarts, i+1)
			c.lineBytes = append(c.lineBytes, b)
		}
	}
}

// ApplyEdit updates the mirror. edited is the range of the inserted text in
// the new text, delta the change in length and inserted the new characters.
// The replaced range of the old text is therefore
// [edited.Lower, edited.Upper-delta).
func (c *Content) ApplyEdit(edited syntax.Span, delta int, inserted string) (EditDescriptor, error) {
	ins := []rune(inserted)
	oldUpper := edited.Upper - delta
	if len(ins) != edited.Len() {
		return EditDescriptor{}, fmt.Errorf("edit %s carries %d characters: %w", edited, len(ins), syntax.ErrInvalidRange)
	}
	if edited.Lower < 0 || oldUpper < edited.Lower || oldUpper > len(c.text) {
		return EditDescriptor{}, fmt.Errorf("edit %s with delta %d on %d characters: %w", edited, delta, len(c.text), syntax.ErrInvalidRange)
	}

	lower := edited.Lower
	desc := EditDescriptor{
		StartByte:   c.ByteOffset(lower),
		OldEndByte:  c.ByteOffset(oldUpper),
		StartPoint:  c.Point(lower),
		OldEndPoint: c.Point(oldUpper),
	}

	insertedBytes := 0
	newlines := 0
	lastLineBytes := 0
	for _, r := range ins {
		n := utf8.RuneLen(r)
		insertedBytes += n
		lastLineBytes += n
		if r == '\n' {
			newlines++
			lastLineBytes = 0
		}
	}
	desc.NewEndByte = desc.StartByte + insertedBytes
	desc.NewEndPoint = Point{Row: desc.StartPoint.Row + newlines, Column: lastLineBytes}
	if newlines == 0 {
		desc.NewEndPoint.Column = desc.StartPoint.Column + insertedBytes
	}

	text := make([]rune, 0, len(c.text)+delta)
	text = append(text, c.text[:lower]...)
	text = append(text, ins...)
	text = append(text, c.text[oldUpper:]...)
	c.text = text

	// Lines starting at or before lower are unaffected. Lines whose break was
	// replaced are dropped and lines after the replaced range shift.
	keep := sort.SearchInts(c.lineStarts, lower+1)
	byteDelta := desc.NewEndByte - desc.OldEndByte
	starts := append([]int(nil), c.lineStarts[:keep]...)
	bytes := append([]int(nil), c.lineBytes[:keep]...)
	b := desc.StartByte
	for i, r := range ins {
		b += utf8.RuneLen(r)
		if r == '\n' {
			starts = append(starts, lower+i+1)
			bytes = append(bytes, b)
		}
	}
	for i := keep; i < len(c.lineStarts); i++ {
		if c.lineStarts[i] > oldUpper {
			starts = append(starts, c.lineStarts[i]+delta)
			bytes = append(bytes, c.lineBytes[i]+byteDelta)
		}
	}
	c.lineStarts = starts
	c.lineBytes = bytes
	return desc, nil
}

// String returns the mirrored text.
func (c *Content) String() string { return string(c.text) }

// Runes returns the mirrored text as characters. The slice must not be
// modified.
func (c *Content) Runes() []rune { return c.text }

// Len returns the length of the text in characters.
func (c *Content) Len() int { return len(c.text) }

// ByteLen returns the length of the text in bytes.
func (c *Content) ByteLen() int { return c.ByteOffset(len(c.text)) }

// LineStarts returns the character offsets at which lines begin.
func (c *Content) LineStarts() []int {
	return append([]int(nil), c.lineStarts...)
}

// Line returns the zero-based line containing the character offset.
func (c *Content) Line(char int) int {
	return sort.SearchInts(c.lineStarts, char+1) - 1
}

// ByteOffset converts a character offset to a byte offset. Offsets are
// clamped to the text.
func (c *Content) ByteOffset(char int) int {
	char = max(0, min(char, len(c.text)))
	line := c.Line(char)
	b := c.lineBytes[line]
	for _, r := range c.text[c.lineStarts[line]:char] {
		b += utf8.RuneLen(r)
	}
	return b
}

// CharOffset converts a byte offset to a character offset. A byte offset
// inside a multi-byte character maps to that character.
func (c *Content) CharOffset(b int) int {
	if b <= 0 {
		return 0
	}
	line := sort.SearchInts(c.lineBytes, b+1) - 1
	char := c.lineStarts[line]
	pos := c.lineBytes[line]
	for char < len(c.text) {
		n := utf8.RuneLen(c.text[char])
		if pos+n > b {
			break
		}
		pos += n
		char++
	}
	return char
}

// Point returns the row and byte column of a character offset.
func (c *Content) Point(char int) Point {
	char = max(0, min(char, len(c.text)))
	line := c.Line(char)
	return Point{Row: line, Column: c.ByteOffset(char) - c.lineBytes[line]}
}

// Span converts a byte range to a character span.
func (c *Content) Span(startByte, endByte int) syntax.Span {
	return syntax.NewSpan(c.CharOffset(startByte), c.CharOffset(endByte))
}

// LineSpan widens r to the whole lines it touches. A non-empty span that ends
// at a line start keeps its end.
func (c *Content) LineSpan(r syntax.Span) syntax.Span {
	r = r.Clamped(len(c.text))
	lower := c.lineStarts[c.Line(r.Lower)]
	upper := r.Upper
	line := c.Line(upper)
	if r.IsEmpty() || c.lineStarts[line] != upper {
		upper = len(c.text)
		if line+1 < len(c.lineStarts) {
			upper = c.lineStarts[line+1]
		}
	}
	return syntax.NewSpan(lower, upper)
}
