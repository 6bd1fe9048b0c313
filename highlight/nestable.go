package highlight

import (
	"context"
	"fmt"
	"sort"

	"github.com/roveo/topo-syntax/syntax"
)

// cancelCheckInterval is the number of scanned characters between two
// cancellation checks.
const cancelCheckInterval = 4096

// NestableMatcher scans text once for paired and inline delimiter tokens.
type NestableMatcher struct {
	scanner *tokenScanner
}

// NewNestableMatcher validates the tokens and prepares the scanner.
func NewNestableMatcher(tokens map[NestableToken]syntax.Category, rule EscapeRule) (*NestableMatcher, error) {
	for token, category := range tokens {
		if err := token.Validate(); err != nil {
			return nil, err
		}
		if !category.Valid() {
			return nil, fmt.Errorf("%s: invalid category %d", token, int(category))
		}
	}
	return &NestableMatcher{scanner: newTokenScanner(tokens, rule)}, nil
}

// Ranges returns the spans matched by each category inside r.
func (m *NestableMatcher) Ranges(ctx context.Context, text []rune, r syntax.Span) (map[syntax.Category][]syntax.Span, error) {
	if r.Lower < 0 || r.Upper > len(text) || r.Lower > r.Upper {
		return nil, fmt.Errorf("scan %s of %d characters: %w", r, len(text), syntax.ErrInvalidRange)
	}
	result := make(map[syntax.Category][]syntax.Span)
	err := m.scanner.scan(ctx, text, r, func(token NestableToken, span syntax.Span) {
		category := m.scanner.categories[token]
		result[category] = append(result[category], span)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// tokenScanner is the single pass state machine shared by NestableMatcher and
// the literal begin/end extractor.
type tokenScanner struct {
	tokens     []NestableToken
	categories map[NestableToken]syntax.Category
	rule       EscapeRule
}

func newTokenScanner(tokens map[NestableToken]syntax.Category, rule EscapeRule) *tokenScanner {
	s := &tokenScanner{
		categories: tokens,
		rule:       rule,
	}
	for token := range tokens {
		s.tokens = append(s.tokens, token)
	}
	// Longer delimiters first so that "'''" is tried before "'".
	sort.Slice(s.tokens, func(i, j int) bool {
		a, b := s.tokens[i], s.tokens[j]
		if la, lb := len([]rune(a.Begin)), len([]rune(b.Begin)); la != lb {
			return la > lb
		}
		if a.Begin != b.Begin {
			return a.Begin < b.Begin
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.End < b.End
	})
	return s
}

type openToken struct {
	token NestableToken
	start int
	end   []rune
}

func (s *tokenScanner) scan(ctx context.Context, text []rune, r syntax.Span, emit func(NestableToken, syntax.Span)) error {
	begins := make([][]rune, len(s.tokens))
	for i, token := range s.tokens {
		begins[i] = []rune(token.Begin)
	}

	// stack holds the open pair tokens, innermost last. A token cannot open
	// while another one is open, so only the top is ever consulted.
	var stack []openToken
	checked := r.Lower

	for pos := r.Lower; pos < r.Upper; {
		if pos-checked >= cancelCheckInterval {
			if err := ctx.Err(); err != nil {
				return err
			}
			checked = pos
		}

		if len(stack) > 0 {
			open := &stack[len(stack)-1]
			if isLineBreak(text[pos]) && !open.token.Multiline {
				// Unclosed single line pair: drop it and resume on the next line.
				stack = stack[:len(stack)-1]
				pos = skipLineBreak(text, pos, r.Upper)
				continue
			}
			if hasPrefixAt(text, pos, r.Upper, open.end) && !s.isEscaped(text, r.Lower, pos) {
				next := pos + len(open.end)
				if s.rule == EscapeDoubleDelimiter && open.token.IsSymmetric() && hasPrefixAt(text, next, r.Upper, open.end) {
					pos = next + len(open.end)
					continue
				}
				emit(open.token, syntax.NewSpan(open.start, next))
				stack = stack[:len(stack)-1]
				pos = next
				continue
			}
			pos++
			continue
		}

		matched := false
		for i, token := range s.tokens {
			begin := begins[i]
			if !hasPrefixAt(text, pos, r.Upper, begin) {
				continue
			}
			if token.Kind == TokenInline {
				if s.rule != EscapeNone && precededByOddBackslashes(text, r.Lower, pos) {
					continue
				}
				if token.LeadingOnly && !onlyWhitespaceBefore(text, r.Lower, pos) {
					continue
				}
				end := lineEnd(text, pos, r.Upper)
				emit(token, syntax.NewSpan(pos, end))
				pos = end
				matched = true
				break
			}
			if s.rule == EscapeBackslash && precededByOddBackslashes(text, r.Lower, pos) {
				continue
			}
			stack = append(stack, openToken{token: token, start: pos, end: []rune(token.End)})
			pos += len(begin)
			matched = true
			break
		}
		if !matched {
			pos++
		}
	}
	return ctx.Err()
}

func (s *tokenScanner) isEscaped(text []rune, lower, pos int) bool {
	return s.rule == EscapeBackslash && precededByOddBackslashes(text, lower, pos)
}

func hasPrefixAt(text []rune, pos, limit int, prefix []rune) bool {
	if len(prefix) == 0 || pos+len(prefix) > limit {
		return false
	}
	for i, r := range prefix {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}

func precededByOddBackslashes(text []rune, lower, pos int) bool {
	count := 0
	for i := pos - 1; i >= lower && text[i] == '\\'; i-- {
		count++
	}
	return count%2 == 1
}

func onlyWhitespaceBefore(text []rune, lower, pos int) bool {
	for i := pos - 1; i >= lower; i-- {
		switch text[i] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// lineEnd returns the offset of the line break ending the line at pos.
func lineEnd(text []rune, pos, limit int) int {
	for pos < limit && !isLineBreak(text[pos]) {
		pos++
	}
	return pos
}

// skipLineBreak returns the offset of the first character after the line
// break at pos, treating "\r\n" as one break.
func skipLineBreak(text []rune, pos, limit int) int {
	if text[pos] == '\r' && pos+1 < limit && text[pos+1] == '\n' {
		return pos + 2
	}
	return pos + 1
}
