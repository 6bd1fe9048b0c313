package highlight

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/roveo/topo-syntax/syntax"
)

// Parser highlights text with regular expression extractors and nestable
// delimiter tokens. A Parser is immutable and safe for concurrent use.
type Parser struct {
	extractors map[syntax.Category][]Extractor
	nestables  *NestableMatcher
}

// NewParser builds a parser from per-category extractors and nestable tokens.
// Tokens that look like words cannot be scanned as nestable tokens and are
// matched by equivalent extractors instead. Tokens that cannot be used at all
// are logged and skipped.
func NewParser(extractors map[syntax.Category][]Extractor, nestables map[NestableToken]syntax.Category, rule EscapeRule) *Parser {
	p := &Parser{extractors: make(map[syntax.Category][]Extractor, len(extractors))}
	for category, list := range extractors {
		if !category.Valid() {
			log.Warn().Int("category", int(category)).Msg("skipping extractors of unknown category")
			continue
		}
		for _, e := range list {
			if e != nil {
				p.extractors[category] = append(p.extractors[category], e)
			}
		}
	}

	scannable := make(map[NestableToken]syntax.Category)
	for token, category := range nestables {
		if !category.Valid() {
			log.Warn().Stringer("token", token).Msg("skipping token of unknown category")
			continue
		}
		err := token.Validate()
		switch {
		case err == nil:
			scannable[token] = category
		case errors.Is(err, ErrWordLikeToken):
			e, ferr := fallbackExtractor(token)
			if ferr != nil {
				log.Warn().Err(ferr).Stringer("token", token).Msg("skipping token")
				continue
			}
			p.extractors[category] = append(p.extractors[category], e)
		default:
			log.Warn().Err(err).Stringer("token", token).Msg("skipping token")
		}
	}
	if len(scannable) > 0 {
		p.nestables = &NestableMatcher{scanner: newTokenScanner(scannable, rule)}
	}
	return p
}

// fallbackExtractor matches a word-like token with regular expressions that
// respect word boundaries.
func fallbackExtractor(token NestableToken) (Extractor, error) {
	if token.Kind == TokenPair {
		return NewBeginEndRegexExtractor(boundedLiteral(token.Begin), boundedLiteral(token.End), false, token.Multiline)
	}
	pattern := boundedLiteral(token.Begin) + `[^\n\r]*`
	if token.LeadingOnly {
		pattern = `(?<=^[ \t]*)` + pattern
	}
	return NewRegexExtractor(pattern, false)
}

func boundedLiteral(s string) string {
	runes := []rune(s)
	pattern := regexp2.Escape(s)
	if len(runes) > 0 && isWordRune(runes[0]) {
		pattern = `(?<![\p{L}\p{N}_])` + pattern
	}
	if len(runes) > 0 && isWordRune(runes[len(runes)-1]) {
		pattern += `(?![\p{L}\p{N}_])`
	}
	return pattern
}

// Parse highlights r of text. The result is sorted and free of overlaps.
func (p *Parser) Parse(ctx context.Context, text string, r syntax.Span) ([]syntax.Highlight, error) {
	return p.ParseRunes(ctx, []rune(text), r)
}

// ParseRunes is Parse for text already split into characters.
func (p *Parser) ParseRunes(ctx context.Context, text []rune, r syntax.Span) ([]syntax.Highlight, error) {
	if r.Lower < 0 || r.Upper > len(text) || r.Lower > r.Upper {
		return nil, fmt.Errorf("highlight %s of %d characters: %w", r, len(text), syntax.ErrInvalidRange)
	}

	categories := syntax.Categories()
	buckets := make([][]syntax.Span, len(categories))
	var nested map[syntax.Category][]syntax.Span

	g, gctx := errgroup.WithContext(ctx)
	for _, category := range categories {
		extractors := p.extractors[category]
		if len(extractors) == 0 {
			continue
		}
		g.Go(func() error {
			for _, e := range extractors {
				if err := gctx.Err(); err != nil {
					return err
				}
				spans, err := e.Ranges(gctx, text, r)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					log.Warn().Err(err).Stringer("category", category).Stringer("extractor", e).Msg("skipping rule")
					continue
				}
				buckets[category] = append(buckets[category], spans...)
			}
			return nil
		})
	}
	if p.nestables != nil {
		g.Go(func() error {
			var err error
			nested, err = p.nestables.Ranges(gctx, text, r)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[syntax.Category][]syntax.Span, len(categories))
	for category, spans := range buckets {
		if len(spans) > 0 {
			merged[syntax.Category(category)] = spans
		}
	}
	for category, spans := range nested {
		merged[category] = append(merged[category], spans...)
	}
	return Merge(merged), nil
}

// Merge resolves overlaps between matched spans. Overlapping spans of one
// category are united. Across categories the stronger category keeps its
// span and the weaker one is cut around it. The result is sorted, free of
// overlaps and covers exactly the union of the input.
func Merge(buckets map[syntax.Category][]syntax.Span) []syntax.Highlight {
	var claimed []syntax.Span
	var out []syntax.Highlight

	for _, category := range syntax.CategoriesByPrecedence() {
		spans := unite(buckets[category])
		for _, span := range spans {
			for _, piece := range subtract(span, claimed) {
				out = append(out, syntax.NewRanged(piece, category))
			}
		}
		claimed = unite(append(claimed, spans...))
	}
	syntax.SortRanged(out)
	return out
}

// unite returns the sorted union of spans. Empty spans are dropped.
// Touching spans stay separate.
func unite(spans []syntax.Span) []syntax.Span {
	sorted := make([]syntax.Span, 0, len(spans))
	for _, s := range spans {
		if !s.IsEmpty() {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lower != sorted[j].Lower {
			return sorted[i].Lower < sorted[j].Lower
		}
		return sorted[i].Upper > sorted[j].Upper
	})

	var out []syntax.Span
	for _, s := range sorted {
		if n := len(out); n > 0 && s.Lower < out[n-1].Upper {
			out[n-1].Upper = max(out[n-1].Upper, s.Upper)
			continue
		}
		out = append(out, s)
	}
	return out
}

// subtract returns the parts of span not covered by claimed, which must be
// sorted and disjoint.
func subtract(span syntax.Span, claimed []syntax.Span) []syntax.Span {
	i := sort.Search(len(claimed), func(i int) bool { return claimed[i].Upper > span.Lower })
	var out []syntax.Span
	lower := span.Lower
	for ; i < len(claimed) && claimed[i].Lower < span.Upper; i++ {
		if claimed[i].Lower > lower {
			out = append(out, syntax.NewSpan(lower, claimed[i].Lower))
		}
		lower = max(lower, claimed[i].Upper)
	}
	if lower < span.Upper {
		out = append(out, syntax.NewSpan(lower, span.Upper))
	}
	return out
}
