// Package highlight implements the regular-expression based highlighting
// engine used for languages described by simple syntax definitions.
package highlight

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrWordLikeToken is returned for delimiters that would collide with normal
// word matching and therefore cannot be scanned as nestable tokens.
var ErrWordLikeToken = errors.New("delimiter looks like a word")

// EscapeRule decides how a delimiter can be written literally.
type EscapeRule int

const (
	// EscapeBackslash ignores delimiters preceded by an odd run of backslashes.
	EscapeBackslash EscapeRule = iota
	// EscapeDoubleDelimiter treats a doubled closing delimiter of a pair
	// whose begin and end are equal ('' inside '...') as a literal.
	EscapeDoubleDelimiter
	// EscapeNone disables escaping entirely.
	EscapeNone
)

func (r EscapeRule) String() string {
	switch r {
	case EscapeBackslash:
		return "backslash"
	case EscapeDoubleDelimiter:
		return "doubleDelimiter"
	case EscapeNone:
		return "none"
	default:
		return fmt.Sprintf("EscapeRule(%d)", int(r))
	}
}

// ParseEscapeRule resolves a rule by name. An empty name is EscapeBackslash.
func ParseEscapeRule(name string) (EscapeRule, error) {
	switch name {
	case "", "backslash":
		return EscapeBackslash, nil
	case "doubleDelimiter":
		return EscapeDoubleDelimiter, nil
	case "none":
		return EscapeNone, nil
	default:
		return 0, fmt.Errorf("unknown escape rule %q", name)
	}
}

// TokenKind distinguishes paired delimiters from line markers.
type TokenKind int

const (
	TokenPair TokenKind = iota
	TokenInline
)

// NestableToken is a paired ("/* ... */") or inline ("// ...") delimiter.
// Tokens are comparable and equal by value.
type NestableToken struct {
	Kind  TokenKind
	Begin string
	// End closes a pair token. It is empty for inline tokens.
	End string
	// Multiline lets a pair token span line breaks.
	Multiline bool
	// LeadingOnly restricts an inline token to markers that start a line,
	// ignoring indentation.
	LeadingOnly bool
}

// Pair returns a paired delimiter token.
func Pair(begin, end string, multiline bool) NestableToken {
	return NestableToken{Kind: TokenPair, Begin: begin, End: end, Multiline: multiline}
}

// Inline returns a delimiter token that runs to the end of the line.
func Inline(marker string, leadingOnly bool) NestableToken {
	return NestableToken{Kind: TokenInline, Begin: marker, LeadingOnly: leadingOnly}
}

// IsSymmetric reports whether a pair token opens and closes with the same string.
func (t NestableToken) IsSymmetric() bool {
	return t.Kind == TokenPair && t.Begin == t.End
}

// Validate checks that the token can be scanned as a nestable token.
func (t NestableToken) Validate() error {
	if t.Begin == "" || (t.Kind == TokenPair && t.End == "") {
		return fmt.Errorf("empty delimiter in %s", t)
	}
	if isWordLike(t.Begin) || (t.Kind == TokenPair && isWordLike(t.End)) {
		return fmt.Errorf("%s: %w", t, ErrWordLikeToken)
	}
	return nil
}

func (t NestableToken) String() string {
	if t.Kind == TokenInline {
		if t.LeadingOnly {
			return fmt.Sprintf("inline(%q, leading)", t.Begin)
		}
		return fmt.Sprintf("inline(%q)", t.Begin)
	}
	if t.Multiline {
		return fmt.Sprintf("pair(%q, %q, multiline)", t.Begin, t.End)
	}
	return fmt.Sprintf("pair(%q, %q)", t.Begin, t.End)
}

// isWordLike reports whether a delimiter starts or ends with a word character.
func isWordLike(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return isWordRune(runes[0]) || isWordRune(runes[len(runes)-1])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
