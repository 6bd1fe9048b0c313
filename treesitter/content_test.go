package treesitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roveo/topo-syntax/syntax"
)

func TestContentApplyEditReplacesAcrossLineIndex(t *testing.T) {
	c := NewContent("abc\ndef")
	desc, err := c.ApplyEdit(syntax.NewSpan(2, 5), 2, "XYZ")
	require.NoError(t, err)

	assert.Equal(t, "abXYZ\ndef", c.String())
	assert.Equal(t, []int{0, 6}, c.LineStarts())
	assert.Equal(t, EditDescriptor{
		StartByte:   2,
		OldEndByte:  3,
		NewEndByte:  5,
		StartPoint:  Point{Row: 0, Column: 2},
		OldEndPoint: Point{Row: 0, Column: 3},
		NewEndPoint: Point{Row: 0, Column: 5},
	}, desc)
}

func TestContentLineSpan(t *testing.T) {
	c := NewContent("ab\ncd\nef")
	tests := []struct {
		in, want syntax.Span
	}{
		{syntax.NewSpan(1, 1), syntax.NewSpan(0, 3)},
		{syntax.NewSpan(4, 5), syntax.NewSpan(3, 6)},
		{syntax.NewSpan(1, 3), syntax.NewSpan(0, 3)},
		{syntax.NewSpan(1, 4), syntax.NewSpan(0, 6)},
		{syntax.NewSpan(7, 8), syntax.NewSpan(6, 8)},
		{syntax.NewSpan(3, 3), syntax.NewSpan(3, 6)},
		{syntax.NewSpan(0, 99), syntax.NewSpan(0, 8)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.LineSpan(tt.in), tt.in.String())
	}
}

func TestContentMultiByteOffsets(t *testing.T) {
	c := NewContent("é\nπx")
	assert.Equal(t, []int{0, 2}, c.LineStarts())
	assert.Equal(t, 2, c.ByteOffset(1))
	assert.Equal(t, 3, c.ByteOffset(2))
	assert.Equal(t, 5, c.ByteOffset(3))
	assert.Equal(t, Point{Row: 1, Column: 2}, c.Point(3))
	assert.Equal(t, 3, c.CharOffset(5))
	assert.Equal(t, 2, c.CharOffset(4), "a byte inside a character maps to that character")

	desc, err := c.ApplyEdit(syntax.NewSpan(2, 4), 1, "日\n")
	require.NoError(t, err)
	assert.Equal(t, "é\n日\nx", c.String())
	assert.Equal(t, []int{0, 2, 4}, c.LineStarts())
	assert.Equal(t, 3, desc.StartByte)
	assert.Equal(t, 5, desc.OldEndByte)
	assert.Equal(t, 7, desc.NewEndByte)
	assert.Equal(t, Point{Row: 1, Column: 0}, desc.StartPoint)
	assert.Equal(t, Point{Row: 1, Column: 2}, desc.OldEndPoint)
	assert.Equal(t, Point{Row: 2, Column: 0}, desc.NewEndPoint)
}

func TestContentRejectsInconsistentEdits(t *testing.T) {
	tests := []struct {
		name     string
		edited   syntax.Span
		delta    int
		inserted string
	}{
		{"inserted length mismatch", syntax.NewSpan(0, 2), 2, "x"},
		{"old range past end", syntax.NewSpan(2, 3), -5, "x"},
		{"negative start", syntax.Span{Lower: -1, Upper: 0}, 0, ""},
		{"old range reversed", syntax.NewSpan(1, 3), 4, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContent("abc")
			_, err := c.ApplyEdit(tt.edited, tt.delta, tt.inserted)
			require.ErrorIs(t, err, syntax.ErrInvalidRange)
			assert.Equal(t, "abc", c.String(), "a rejected edit leaves the mirror untouched")
		})
	}
}

func naiveLineStarts(text []rune) []int {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func naivePoint(text []rune, char int) Point {
	prefix := string(text[:char])
	row := strings.Count(prefix, "\n")
	col := len(prefix) - (strings.LastIndex(prefix, "\n") + 1)
	return Point{Row: row, Column: col}
}

func TestContentEditsMatchRecomputation(t *testing.T) {
	alphabet := []rune{'a', 'b', '\n', 'é', '日', ' '}
	textGen := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 40)

	rapid.Check(t, func(t *rapid.T) {
		text := textGen.Draw(t, "text")
		c := NewContent(string(text))

		steps := rapid.IntRange(1, 5).Draw(t, "steps")
		for range steps {
			lower := rapid.IntRange(0, len(text)).Draw(t, "lower")
			oldUpper := rapid.IntRange(lower, len(text)).Draw(t, "oldUpper")
			inserted := textGen.Draw(t, "inserted")

			delta := len(inserted) - (oldUpper - lower)
			edited := syntax.SpanOf(lower, len(inserted))
			desc, err := c.ApplyEdit(edited, delta, string(inserted))
			if err != nil {
				t.Fatalf("edit rejected: %v", err)
			}

			next := append(append(append([]rune(nil), text[:lower]...), inserted...), text[oldUpper:]...)
			if got := c.String(); got != string(next) {
				t.Fatalf("text %q, want %q", got, string(next))
			}
			assert.Equal(t, naiveLineStarts(next), c.LineStarts())
			assert.Equal(t, len(string(text[:lower])), desc.StartByte)
			assert.Equal(t, len(string(text[:oldUpper])), desc.OldEndByte)
			assert.Equal(t, len(string(next[:lower+len(inserted)])), desc.NewEndByte)
			assert.Equal(t, naivePoint(text, lower), desc.StartPoint)
			assert.Equal(t, naivePoint(text, oldUpper), desc.OldEndPoint)
			assert.Equal(t, naivePoint(next, lower+len(inserted)), desc.NewEndPoint)

			pos := rapid.IntRange(0, len(next)).Draw(t, "pos")
			b := len(string(next[:pos]))
			assert.Equal(t, b, c.ByteOffset(pos))
			assert.Equal(t, pos, c.CharOffset(b))
			assert.Equal(t, utf8.RuneCountInString(c.String()), c.Len())

			text = next
		}
	})
}
