package treesitter

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

const (
	nameCapture = "name"
	markPrefix  = "MARK:"
)

// outlineNode is an outline capture before post-processing.
type outlineNode struct {
	node *sitter.Node
	name *sitter.Node
	kind syntax.OutlineKind
}

func (c *Client) outline(ctx context.Context) ([]syntax.OutlineItem, error) {
	q := c.queries.Outline
	if q == nil {
		return nil, nil
	}
	src := c.sourceBytes()
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, c.tree.RootNode())

	var items []syntax.OutlineItem
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

		var found []outlineNode
		var name *sitter.Node
		for _, qc := range m.Captures {
			captureName := q.CaptureNameForId(qc.Index)
			if captureName == nameCapture {
				name = qc.Node
				continue
			}
			kind, ok := syntax.ParseOutlineKind(captureName)
			if !ok || captureName == "" {
				continue
			}
			found = append(found, outlineNode{node: qc.Node, kind: kind})
		}
		for _, f := range found {
			f.name = name
			items = append(items, c.outlineItems(f, src)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nestOutline(c.content.Runes(), dedupeOutline(items)), nil
}

// outlineItems turns one capture into items. A mark comment can yield a
// separator and a mark.
func (c *Client) outlineItems(f outlineNode, src []byte) []syntax.OutlineItem {
	span := c.content.Span(int(f.node.StartByte()), int(f.node.EndByte()))

	switch f.kind {
	case syntax.KindSeparator:
		return []syntax.OutlineItem{{Span: span, Kind: syntax.KindSeparator}}
	case syntax.KindMark:
		return markItems(f.node.Content(src), span)
	}

	title := ""
	if titler, ok := c.lang.(languages.OutlineTitler); ok {
		title = titler.OutlineTitle(f.node, f.kind, src)
	}
	if title == "" && f.name != nil {
		title = f.name.Content(src)
	}
	if title == "" {
		title = languages.FirstLine(f.node.Content(src))
	}
	title = languages.CollapseSpace(title)
	if title == "" {
		return nil
	}
	return []syntax.OutlineItem{{Title: title, Span: span, Kind: f.kind}}
}

// markItems reads "MARK: title" and "MARK: - title" comments.
func markItems(comment string, span syntax.Span) []syntax.OutlineItem {
	_, rest, ok := strings.Cut(comment, markPrefix)
	if !ok {
		return nil
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "*/"))

	var items []syntax.OutlineItem
	if after, ok := strings.CutPrefix(rest, "-"); ok {
		items = append(items, syntax.OutlineItem{Span: span, Kind: syntax.KindSeparator})
		rest = after
	}
	if title := languages.CollapseSpace(rest); title != "" {
		items = append(items, syntax.OutlineItem{Title: title, Span: span, Kind: syntax.KindMark})
	}
	return items
}

func dedupeOutline(items []syntax.OutlineItem) []syntax.OutlineItem {
	type key struct {
		span  syntax.Span
		kind  syntax.OutlineKind
		title string
	}
	seen := make(map[key]bool, len(items))
	out := items[:0]
	for _, item := range items {
		k := key{item.Span, item.Kind, item.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

// parentKinds are the kinds that other items nest under.
var parentKinds = map[syntax.OutlineKind]bool{
	syntax.KindContainer: true,
	syntax.KindFunction:  true,
	syntax.KindHeading:   true,
}

type openParent struct {
	span syntax.Span
	// header is the end of the leading attributes inside the parent.
	header int
}

// nestOutline orders items and assigns indentation levels by containment.
// Attributes leading a definition stay at the definition's level instead of
// nesting under it.
func nestOutline(text []rune, items []syntax.OutlineItem) []syntax.OutlineItem {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Span, items[j].Span
		if a.Lower != b.Lower {
			return a.Lower < b.Lower
		}
		return a.Upper > b.Upper
	})

	var stack []openParent
	for i := range items {
		item := &items[i]
		for len(stack) > 0 && !stack[len(stack)-1].span.ContainsSpan(item.Span) {
			stack = stack[:len(stack)-1]
		}

		level := len(stack)
		if item.Kind == syntax.KindAttribute {
			for level > 0 && onlyBlankBetween(text, stack[level-1].header, item.Span.Lower) {
				stack[level-1].header = item.Span.Upper
				level--
			}
		}
		item.Indent = syntax.IndentLevel(level)

		if parentKinds[item.Kind] {
			stack = append(stack, openParent{span: item.Span, header: item.Span.Lower})
		}
	}
	return items
}

func onlyBlankBetween(text []rune, from, to int) bool {
	if from > to {
		return false
	}
	for _, r := range text[from:to] {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
