// Package syntax defines the value types shared by the highlighting and
// outline engines: character spans, range-tagged values, syntax categories,
// highlights and outline items.
package syntax

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a caller supplied range is out of bounds or
// disagrees with the text it is supposed to describe.
var ErrInvalidRange = errors.New("invalid range")

// Span is a half-open range [Lower, Upper) of character offsets.
type Span struct {
	Lower int
	Upper int
}

// NewSpan returns the span [lower, upper). The bounds are swapped when given
// in reverse order so that Lower <= Upper always holds.
func NewSpan(lower, upper int) Span {
	if upper < lower {
		lower, upper = upper, lower
	}
	return Span{Lower: lower, Upper: upper}
}

// SpanOf returns the span starting at location with the given length.
func SpanOf(location, length int) Span {
	return NewSpan(location, location+length)
}

func (s Span) Len() int      { return s.Upper - s.Lower }
func (s Span) IsEmpty() bool { return s.Upper <= s.Lower }

// Contains reports whether loc lies inside the span.
func (s Span) Contains(loc int) bool {
	return s.Lower <= loc && loc < s.Upper
}

// ContainsSpan reports whether o lies entirely inside s.
func (s Span) ContainsSpan(o Span) bool {
	return s.Lower <= o.Lower && o.Upper <= s.Upper
}

// Overlaps reports whether the two spans share at least one character.
func (s Span) Overlaps(o Span) bool {
	return s.Lower < o.Upper && o.Lower < s.Upper
}

// Intersection returns the shared part of both spans. The second return value
// is false when the spans do not overlap.
func (s Span) Intersection(o Span) (Span, bool) {
	lower := max(s.Lower, o.Lower)
	upper := min(s.Upper, o.Upper)
	if lower >= upper {
		return Span{}, false
	}
	return Span{Lower: lower, Upper: upper}, true
}

// Union returns the smallest span covering both spans.
func (s Span) Union(o Span) Span {
	return Span{Lower: min(s.Lower, o.Lower), Upper: max(s.Upper, o.Upper)}
}

// Shifted moves the span by delta characters.
func (s Span) Shifted(delta int) Span {
	return Span{Lower: s.Lower + delta, Upper: s.Upper + delta}
}

// Clamped restricts the span to [0, length).
func (s Span) Clamped(length int) Span {
	lower := min(max(s.Lower, 0), length)
	upper := min(max(s.Upper, lower), length)
	return Span{Lower: lower, Upper: upper}
}

// Remapped moves a span recorded before an edit to the text after it. edited
// covers the inserted text after the edit and delta is the change in length.
// Bounds inside the replaced text move to the end of the insertion.
func (s Span) Remapped(edited Span, delta int) Span {
	oldUpper := edited.Upper - delta
	move := func(x int) int {
		switch {
		case x <= edited.Lower:
			return x
		case x >= oldUpper:
			return x + delta
		default:
			return edited.Upper
		}
	}
	return NewSpan(move(s.Lower), move(s.Upper))
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Lower, s.Upper)
}
