// Package outline extracts outline items from text with regular expression
// rules.
package outline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"

	"github.com/roveo/topo-syntax/highlight"
	"github.com/roveo/topo-syntax/syntax"
)

// Rule describes one kind of outline item.
type Rule struct {
	Pattern string
	// Template builds the title from numbered groups ($0 to $9). An empty
	// template uses the whole match.
	Template   string
	IgnoreCase bool
	Kind       syntax.OutlineKind
}

// Extractor applies a single rule.
type Extractor struct {
	rule Rule
	re   *regexp2.Regexp
}

// NewExtractor compiles the rule pattern.
func NewExtractor(rule Rule) (*Extractor, error) {
	if rule.Pattern == "" {
		return nil, fmt.Errorf("outline rule has no pattern")
	}
	re, err := highlight.CompilePattern(rule.Pattern, rule.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("failed to compile outline pattern %q: %w", rule.Pattern, err)
	}
	return &Extractor{rule: rule, re: re}, nil
}

// Rule returns the rule the extractor was built from.
func (e *Extractor) Rule() Rule { return e.rule }

// Items returns the outline items found inside r, in document order.
func (e *Extractor) Items(ctx context.Context, text []rune, r syntax.Span) ([]syntax.OutlineItem, error) {
	if r.Lower < 0 || r.Upper > len(text) || r.Lower > r.Upper {
		return nil, fmt.Errorf("outline %s of %d characters: %w", r, len(text), syntax.ErrInvalidRange)
	}
	return highlight.RunCancellable(ctx, func() ([]syntax.OutlineItem, error) {
		var items []syntax.OutlineItem
		err := highlight.ForEachMatch(ctx, e.re, text, r, func(m *regexp2.Match, span syntax.Span) {
			indent := syntax.IndentString(leadingWhitespace(text, span.Lower))
			if e.rule.Kind == syntax.KindSeparator {
				items = append(items, syntax.OutlineItem{Span: span, Kind: syntax.KindSeparator, Indent: indent})
			} else if title := normalizeTitle(e.title(m)); title != "" {
				items = append(items, syntax.OutlineItem{Title: title, Span: span, Kind: e.rule.Kind, Indent: indent})
			}
		})
		if err != nil {
			return nil, err
		}
		return items, nil
	})
}

func (e *Extractor) title(m *regexp2.Match) string {
	if e.rule.Template == "" {
		return m.String()
	}
	return expandTemplate(e.rule.Template, m)
}

// expandTemplate substitutes $0 to $9 with the matching groups. "\$" is a
// literal dollar sign.
func expandTemplate(template string, m *regexp2.Match) string {
	var sb strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes) && runes[i+1] == '$':
			sb.WriteRune('$')
			i++
		case c == '$' && i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9':
			if g := m.GroupByNumber(int(runes[i+1] - '0')); g != nil && len(g.Captures) > 0 {
				sb.WriteString(g.String())
			}
			i++
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// normalizeTitle collapses every whitespace run to a single space.
func normalizeTitle(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// leadingWhitespace returns the indentation of the line containing pos.
func leadingWhitespace(text []rune, pos int) string {
	start := pos
	for start > 0 && text[start-1] != '\n' && text[start-1] != '\r' {
		start--
	}
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return string(text[start:end])
}

// Parser applies a set of rules and merges their items.
type Parser struct {
	extractors []*Extractor
}

// NewParser compiles the rules. Rules that fail to compile are logged and
// skipped.
func NewParser(rules []Rule) *Parser {
	p := &Parser{}
	for _, rule := range rules {
		e, err := NewExtractor(rule)
		if err != nil {
			log.Warn().Err(err).Stringer("kind", rule.Kind).Msg("skipping outline rule")
			continue
		}
		p.extractors = append(p.extractors, e)
	}
	return p
}

// Len returns the number of usable rules.
func (p *Parser) Len() int { return len(p.extractors) }

// Parse returns the outline of the whole text.
func (p *Parser) Parse(ctx context.Context, text string) ([]syntax.OutlineItem, error) {
	runes := []rune(text)
	return p.ParseRunes(ctx, runes, syntax.NewSpan(0, len(runes)))
}

// ParseRunes returns the outline items inside r sorted by location.
func (p *Parser) ParseRunes(ctx context.Context, text []rune, r syntax.Span) ([]syntax.OutlineItem, error) {
	if r.Lower < 0 || r.Upper > len(text) || r.Lower > r.Upper {
		return nil, fmt.Errorf("outline %s of %d characters: %w", r, len(text), syntax.ErrInvalidRange)
	}
	var items []syntax.OutlineItem
	for _, e := range p.extractors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := e.Items(ctx, text, r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("pattern", e.rule.Pattern).Msg("skipping outline rule")
			continue
		}
		items = append(items, found...)
	}
	// Items of different rules starting together keep rule order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Span.Lower < items[j].Span.Lower
	})
	return items, nil
}
