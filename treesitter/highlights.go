package treesitter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

const (
	// matchesPerCancelCheck is the number of query matches between two
	// cancellation checks.
	matchesPerCancelCheck = 64
	// maxInjectionDepth bounds languages embedded in embedded languages.
	maxInjectionDepth = 3
	injectionPrefix   = "injection."
)

type captureTarget struct {
	category syntax.Category
	ok       bool
}

// capture is a highlight capture in bytes of the document.
type capture struct {
	start, end uint32
	category   syntax.Category
	// layer is 0 for the document language and grows with each injection.
	layer   int
	pattern int
}

// categoryFor maps a capture name to a category by its root component.
// Unknown roots are rejected and reported once.
func (c *Client) categoryFor(name string) (syntax.Category, bool) {
	if t, ok := c.captures[name]; ok {
		return t.category, t.ok
	}
	category, ok := syntax.CategoryForCapture(name)
	if !ok && !strings.HasPrefix(name, "_") {
		log.Debug().Str("language", c.lang.Name()).Str("capture", name).Msg("ignoring capture of unknown category")
	}
	c.captures[name] = captureTarget{category: category, ok: ok}
	return category, ok
}

func (c *Client) highlights(ctx context.Context, update syntax.Span) ([]syntax.Highlight, error) {
	src := c.sourceBytes()
	root := c.tree.RootNode()
	start, end := c.content.Point(update.Lower).sitter(), c.content.Point(update.Upper).sitter()

	var captures []capture
	if c.queries.Highlights != nil {
		found, err := c.collect(ctx, c.queries.Highlights, root, src, 0, 0, &start, &end)
		if err != nil {
			return nil, err
		}
		captures = found
	}
	if c.queries.Injections != nil {
		injected, err := c.inject(ctx, c.queries.Injections, root, src, 0, 1, &start, &end)
		if err != nil {
			return nil, err
		}
		captures = append(captures, injected...)
	}

	var out []syntax.Highlight
	for _, r := range resolveInnermost(captures) {
		span, ok := c.content.Span(int(r.start), int(r.end)).Intersection(update)
		if !ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Value == r.category && out[n-1].Span.Upper == span.Lower {
			out[n-1].Span.Upper = span.Upper
			continue
		}
		out = append(out, syntax.NewRanged(span, r.category))
	}
	return out, nil
}

// collect runs a highlight query over node. Byte offsets are shifted by
// offset. A nil point range covers the whole node.
func (c *Client) collect(ctx context.Context, q *sitter.Query, node *sitter.Node, src []byte, offset uint32, layer int, start, end *sitter.Point) ([]capture, error) {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	if start != nil && end != nil {
		cursor.SetPointRange(*start, *end)
	}
	cursor.Exec(q, node)

	var out []capture
	for n := 1; ; n++ {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		if n%matchesPerCancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		m = cursor.FilterPredicates(m, src)
		for _, qc := range m.Captures {
			category, ok := c.categoryFor(q.CaptureNameForId(qc.Index))
			if !ok || qc.Node.StartByte() >= qc.Node.EndByte() {
				continue
			}
			out = append(out, capture{
				start:    qc.Node.StartByte() + offset,
				end:      qc.Node.EndByte() + offset,
				category: category,
				layer:    layer,
				pattern:  int(m.PatternIndex),
			})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// inject parses the nodes captured by an injection query with their own
// language and returns their highlights.
func (c *Client) inject(ctx context.Context, q *sitter.Query, node *sitter.Node, src []byte, offset uint32, layer int, start, end *sitter.Point) ([]capture, error) {
	if layer > maxInjectionDepth {
		return nil, nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	if start != nil && end != nil {
		cursor.SetPointRange(*start, *end)
	}
	cursor.Exec(q, node)

	var out []capture
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m = cursor.FilterPredicates(m, src)
		for _, qc := range m.Captures {
			name, ok := strings.CutPrefix(q.CaptureNameForId(qc.Index), injectionPrefix)
			if !ok {
				continue
			}
			lang, ok := c.provider(name)
			if !ok {
				log.Debug().Str("language", name).Msg("no grammar for injected language")
				continue
			}
			found, err := c.parseInjected(ctx, lang, src[qc.Node.StartByte():qc.Node.EndByte()], offset+qc.Node.StartByte(), layer)
			if err != nil {
				return nil, err
			}
			out = append(out, found...)
		}
	}
	return out, nil
}

func (c *Client) parseInjected(ctx context.Context, lang languages.GrammarLanguage, src []byte, offset uint32, layer int) ([]capture, error) {
	queries, err := lang.Queries()
	if err != nil {
		log.Warn().Err(err).Str("language", lang.Name()).Msg("skipping injected language")
		return nil, nil
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.TreeSitterLang())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to parse injected %s: %w", lang.Name(), err)
	}
	defer tree.Close()

	var out []capture
	if queries.Highlights != nil {
		found, err := c.collect(ctx, queries.Highlights, tree.RootNode(), src, offset, layer, nil, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	if queries.Injections != nil {
		found, err := c.inject(ctx, queries.Injections, tree.RootNode(), src, offset, layer+1, nil, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// resolveInnermost turns possibly nested captures into sorted, disjoint
// ranges. Where captures nest the innermost one wins. For identical ranges an
// injected capture beats its host and an earlier query pattern beats a later
// one.
func resolveInnermost(captures []capture) []capture {
	if len(captures) == 0 {
		return nil
	}
	sort.SliceStable(captures, func(i, j int) bool {
		a, b := captures[i], captures[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if wa, wb := a.end-a.start, b.end-b.start; wa != wb {
			return wa > wb
		}
		if a.layer != b.layer {
			return a.layer < b.layer
		}
		return a.pattern > b.pattern
	})

	type event struct {
		pos   uint32
		start bool
		idx   int
	}
	events := make([]event, 0, len(captures)*2)
	for i, qc := range captures {
		events = append(events, event{pos: qc.start, start: true, idx: i}, event{pos: qc.end, idx: i})
	}
	// At one position ends come before starts. Starts keep the capture
	// order so the innermost capture is pushed last.
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.start != b.start {
			return !a.start
		}
		if a.start {
			return a.idx < b.idx
		}
		return a.idx > b.idx
	})

	var stack []int
	var out []capture
	var last uint32
	for _, ev := range events {
		if len(stack) > 0 && ev.pos > last {
			top := captures[stack[len(stack)-1]]
			if n := len(out); n > 0 && out[n-1].end == last && out[n-1].category == top.category {
				out[n-1].end = ev.pos
			} else {
				out = append(out, capture{start: last, end: ev.pos, category: top.category})
			}
		}
		last = ev.pos
		if ev.start {
			stack = append(stack, ev.idx)
			continue
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i] == ev.idx {
				stack = append(stack[:i], stack[i+1:]...)
				break
			}
		}
	}
	return out
}
