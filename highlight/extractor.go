package highlight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/roveo/topo-syntax/syntax"
)

// ExtractorKind enumerates the extractor strategies.
type ExtractorKind int

const (
	KindWords ExtractorKind = iota
	KindRegex
	KindBeginEndRegex
	KindBeginEndString
)

func (k ExtractorKind) String() string {
	switch k {
	case KindWords:
		return "words"
	case KindRegex:
		return "regex"
	case KindBeginEndRegex:
		return "beginEndRegex"
	case KindBeginEndString:
		return "beginEndString"
	default:
		return fmt.Sprintf("ExtractorKind(%d)", int(k))
	}
}

// Extractor finds the spans matched by one highlighting rule. The set of
// implementations is closed: WordsExtractor, RegexExtractor,
// BeginEndRegexExtractor and BeginEndStringExtractor.
type Extractor interface {
	Kind() ExtractorKind
	// Ranges returns the matched spans inside r in ascending order.
	Ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error)
	String() string

	sealed()
}

// matchesPerCancelCheck is the number of regex matches between two
// cancellation checks.
const matchesPerCancelCheck = 64

// RunCancellable calls find in its own goroutine and returns ctx.Err() as
// soon as ctx is done, even while find is stuck inside a single match.
// The abandoned goroutine ends at the next cancellation check or when the
// pattern's MatchTimeout expires, so find must only touch its own results.
func RunCancellable[T any](ctx context.Context, find func() (T, error)) (T, error) {
	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := find()
		done <- outcome{v, err}
	}()
	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ForEachMatch runs re over the whole text starting at r.Lower, so anchors
// and lookbehinds see the characters around r. It calls fn for every
// non-empty match starting inside r with the match span clipped to r.
func ForEachMatch(ctx context.Context, re *regexp2.Regexp, text []rune, r syntax.Span, fn func(m *regexp2.Match, span syntax.Span)) error {
	if r.Lower >= r.Upper {
		return ctx.Err()
	}
	m, err := re.FindRunesMatchStartingAt(text, r.Lower)
	for count := 1; m != nil && m.Index < r.Upper; count++ {
		if count%matchesPerCancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if m.Length > 0 {
			if span, ok := clip(syntax.SpanOf(m.Index, m.Length), r); ok {
				fn(m, span)
			}
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

// clip intersects span with r and reports whether anything is left.
func clip(span, r syntax.Span) (syntax.Span, bool) {
	lower, upper := max(span.Lower, r.Lower), min(span.Upper, r.Upper)
	if lower >= upper {
		return syntax.Span{}, false
	}
	return syntax.NewSpan(lower, upper), true
}

func matchSpans(ctx context.Context, re *regexp2.Regexp, text []rune, r syntax.Span) ([]syntax.Span, error) {
	return RunCancellable(ctx, func() ([]syntax.Span, error) {
		var spans []syntax.Span
		err := ForEachMatch(ctx, re, text, r, func(_ *regexp2.Match, span syntax.Span) {
			spans = append(spans, span)
		})
		if err != nil {
			return nil, err
		}
		return spans, nil
	})
}

func checkSpan(text []rune, r syntax.Span) error {
	if r.Lower < 0 || r.Upper > len(text) || r.Lower > r.Upper {
		return fmt.Errorf("extract %s of %d characters: %w", r, len(text), syntax.ErrInvalidRange)
	}
	return nil
}

// WordsExtractor matches a list of literal words.
type WordsExtractor struct {
	words      []string
	ignoreCase bool
	re         *regexp2.Regexp
}

// NewWordsExtractor compiles words into a single alternation. Word boundaries
// are derived from the characters present in the words so that, for
// instance, a keyword containing a hyphen is not matched inside a longer
// hyphenated word.
func NewWordsExtractor(words []string, ignoreCase bool) (*WordsExtractor, error) {
	var cleaned []string
	seen := make(map[string]bool)
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	sort.Slice(cleaned, func(i, j int) bool {
		if len(cleaned[i]) != len(cleaned[j]) {
			return len(cleaned[i]) > len(cleaned[j])
		}
		return cleaned[i] < cleaned[j]
	})

	escaped := make([]string, len(cleaned))
	for i, w := range cleaned {
		escaped[i] = regexp2.Escape(w)
	}
	boundary := wordBoundaryClass(cleaned)
	pattern := "(?<!" + boundary + ")(?:" + strings.Join(escaped, "|") + ")(?!" + boundary + ")"

	re, err := CompilePattern(pattern, ignoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile word list: %w", err)
	}
	return &WordsExtractor{words: cleaned, ignoreCase: ignoreCase, re: re}, nil
}

// wordBoundaryClass returns a character class of everything that continues a
// word: letters, digits, underscore and any other character used by the words.
func wordBoundaryClass(words []string) string {
	extra := make(map[rune]bool)
	for _, w := range words {
		for _, r := range w {
			if !isWordRune(r) && r != ' ' && r != '\t' {
				extra[r] = true
			}
		}
	}
	runes := make([]rune, 0, len(extra))
	for r := range extra {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	var sb strings.Builder
	sb.WriteString(`[\p{L}\p{N}_`)
	for _, r := range runes {
		switch r {
		case '\\', ']', '[', '^', '-':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteString("]")
	return sb.String()
}

func (e *WordsExtractor) Kind() ExtractorKind { return KindWords }
func (e *WordsExtractor) sealed()             {}

func (e *WordsExtractor) String() string {
	return fmt.Sprintf("words(%d, ignoreCase=%t)", len(e.words), e.ignoreCase)
}

func (e *WordsExtractor) Ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error) {
	if err := checkSpan(text, r); err != nil {
		return nil, err
	}
	return matchSpans(ctx, e.re, text, r)
}

// RegexExtractor matches a single regular expression.
type RegexExtractor struct {
	pattern string
	re      *regexp2.Regexp
}

// NewRegexExtractor compiles pattern. Line anchors match at line boundaries.
func NewRegexExtractor(pattern string, ignoreCase bool) (*RegexExtractor, error) {
	re, err := CompilePattern(pattern, ignoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", pattern, err)
	}
	return &RegexExtractor{pattern: pattern, re: re}, nil
}

func (e *RegexExtractor) Kind() ExtractorKind { return KindRegex }
func (e *RegexExtractor) sealed()             {}
func (e *RegexExtractor) String() string      { return fmt.Sprintf("regex(%q)", e.pattern) }

func (e *RegexExtractor) Ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error) {
	if err := checkSpan(text, r); err != nil {
		return nil, err
	}
	return matchSpans(ctx, e.re, text, r)
}

// BeginEndRegexExtractor matches from a begin pattern to the next end pattern.
type BeginEndRegexExtractor struct {
	begin, end     string
	beginRe, endRe *regexp2.Regexp
	multiline      bool
}

// NewBeginEndRegexExtractor compiles both patterns. Without multiline, the
// end pattern must match on the line where the begin match ends.
func NewBeginEndRegexExtractor(begin, end string, ignoreCase, multiline bool) (*BeginEndRegexExtractor, error) {
	beginRe, err := CompilePattern(begin, ignoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile begin %q: %w", begin, err)
	}
	endRe, err := CompilePattern(end, ignoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile end %q: %w", end, err)
	}
	return &BeginEndRegexExtractor{
		begin:     begin,
		end:       end,
		beginRe:   beginRe,
		endRe:     endRe,
		multiline: multiline,
	}, nil
}

func (e *BeginEndRegexExtractor) Kind() ExtractorKind { return KindBeginEndRegex }
func (e *BeginEndRegexExtractor) sealed()             {}

func (e *BeginEndRegexExtractor) String() string {
	return fmt.Sprintf("beginEndRegex(%q, %q)", e.begin, e.end)
}

func (e *BeginEndRegexExtractor) Ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error) {
	if err := checkSpan(text, r); err != nil {
		return nil, err
	}
	return RunCancellable(ctx, func() ([]syntax.Span, error) {
		return e.ranges(ctx, text, r)
	})
}

// ranges reports regions whose begin match starts inside r. The end is
// searched past r.Upper so a region closed after r is still highlighted up
// to r.Upper.
func (e *BeginEndRegexExtractor) ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error) {
	var spans []syntax.Span
	for pos, count := r.Lower, 1; pos < r.Upper; count++ {
		if count%matchesPerCancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		bm, err := e.beginRe.FindRunesMatchStartingAt(text, pos)
		if err != nil {
			return nil, err
		}
		if bm == nil || bm.Index >= r.Upper {
			break
		}
		beginEnd := bm.Index + bm.Length

		limit := len(text)
		if !e.multiline {
			limit = lineEnd(text, beginEnd, len(text))
		}
		em, err := e.endRe.FindRunesMatchStartingAt(text[:limit], beginEnd)
		if err != nil {
			return nil, err
		}
		if em == nil {
			// Unclosed begin: no highlight, keep looking after it.
			pos = max(beginEnd, bm.Index+1)
			continue
		}
		stop := em.Index + em.Length
		if span, ok := clip(syntax.NewSpan(bm.Index, stop), r); ok {
			spans = append(spans, span)
		}
		pos = max(stop, bm.Index+1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return spans, nil
}

// BeginEndStringExtractor matches literal begin and end delimiters using the
// same scanner as NestableMatcher, so equal delimiters honour the doubled
// delimiter rule.
type BeginEndStringExtractor struct {
	token   NestableToken
	scanner *tokenScanner
}

// NewBeginEndStringExtractor returns an extractor for literal delimiters.
// Case-insensitive delimiters are matched through escaped regular expressions.
func NewBeginEndStringExtractor(begin, end string, ignoreCase, multiline bool, rule EscapeRule) (Extractor, error) {
	if begin == "" || end == "" {
		return nil, fmt.Errorf("empty delimiter in begin %q end %q", begin, end)
	}
	if ignoreCase {
		return NewBeginEndRegexExtractor(regexp2.Escape(begin), regexp2.Escape(end), true, multiline)
	}
	token := Pair(begin, end, multiline)
	scanner := newTokenScanner(map[NestableToken]syntax.Category{token: syntax.Strings}, rule)
	return &BeginEndStringExtractor{token: token, scanner: scanner}, nil
}

func (e *BeginEndStringExtractor) Kind() ExtractorKind { return KindBeginEndString }
func (e *BeginEndStringExtractor) sealed()             {}

func (e *BeginEndStringExtractor) String() string {
	return fmt.Sprintf("beginEndString(%q, %q)", e.token.Begin, e.token.End)
}

func (e *BeginEndStringExtractor) Ranges(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Span, error) {
	if err := checkSpan(text, r); err != nil {
		return nil, err
	}
	var spans []syntax.Span
	err := e.scanner.scan(ctx, text, r, func(_ NestableToken, span syntax.Span) {
		spans = append(spans, span)
	})
	if err != nil {
		return nil, err
	}
	return spans, nil
}
