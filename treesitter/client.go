package treesitter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

// ParseResult is the outcome of a highlight parse.
type ParseResult struct {
	Highlights []syntax.Highlight
	// UpdateRange is the span the highlights were computed for. It covers
	// the requested range, every edit noted since the previous highlight
	// parse and every region the grammar re-validated.
	UpdateRange syntax.Span
}

// Client keeps an incremental parse tree for one document in one language.
// A Client is not safe for concurrent use; edits and parses must be issued
// in document order by a single owner.
type Client struct {
	lang     languages.GrammarLanguage
	queries  *languages.Queries
	provider languages.Provider

	parser  *sitter.Parser
	tree    *sitter.Tree
	content *Content
	source  []byte

	// edited is set when the tree has been edited but not re-parsed.
	edited bool
	// dirty accumulates the changed region not yet reported by
	// ParseHighlights.
	dirty    syntax.Span
	hasDirty bool

	captures map[string]captureTarget
}

// NewClient returns a client for lang. The provider resolves languages
// embedded through injection queries; nil uses the language registry.
func NewClient(lang languages.GrammarLanguage, provider languages.Provider) (*Client, error) {
	queries, err := lang.Queries()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s queries: %w", lang.Name(), err)
	}
	if provider == nil {
		provider = languages.LookupGrammar
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang.TreeSitterLang())
	return &Client{
		lang:     lang,
		queries:  queries,
		provider: provider,
		parser:   parser,
		content:  NewContent(""),
		captures: make(map[string]captureTarget),
	}, nil
}

// Language returns the language the client parses.
func (c *Client) Language() languages.GrammarLanguage { return c.lang }

// Text returns the client's mirror of the document.
func (c *Client) Text() string { return c.content.String() }

// Content returns the client's mirror of the document.
func (c *Client) Content() *Content { return c.content }

// Reset replaces the document text. The next parse starts from scratch.
func (c *Client) Reset(text string) {
	c.content.Reset(text)
	c.source = nil
	c.closeTree()
	c.edited = false
	c.hasDirty = false
}

// NoteEdit records an edit without re-parsing. edited is the range of the
// inserted text after the edit and delta the change in length.
func (c *Client) NoteEdit(edited syntax.Span, delta int, inserted string) error {
	desc, err := c.content.ApplyEdit(edited, delta, inserted)
	if err != nil {
		return err
	}
	c.source = nil

	if c.hasDirty {
		c.dirty = c.dirty.Remapped(edited, delta)
	}
	c.markDirty(edited)
	if c.tree != nil {
		c.tree.Edit(desc.InputEdit())
		c.edited = true
	}
	return nil
}

// ParseHighlights re-parses what the noted edits invalidated and returns the
// highlights of r extended to the update range. When text differs from the
// client's mirror the client is reset to text first.
func (c *Client) ParseHighlights(ctx context.Context, text string, r syntax.Span) (*ParseResult, error) {
	if text != c.content.String() {
		c.Reset(text)
	}
	if r.Lower < 0 || r.Upper > c.content.Len() || r.Lower > r.Upper {
		return nil, fmt.Errorf("highlight %s of %d characters: %w", r, c.content.Len(), syntax.ErrInvalidRange)
	}
	if err := c.parse(ctx); err != nil {
		return nil, err
	}

	update := r
	if c.hasDirty {
		update = update.Union(c.dirty)
	}
	highlights, err := c.highlights(ctx, update)
	if err != nil {
		return nil, err
	}
	c.hasDirty = false
	return &ParseResult{Highlights: highlights, UpdateRange: update}, nil
}

// ParseOutline re-parses what the noted edits invalidated and returns the
// outline of the whole document.
func (c *Client) ParseOutline(ctx context.Context, text string) ([]syntax.OutlineItem, error) {
	if text != c.content.String() {
		c.Reset(text)
	}
	if err := c.parse(ctx); err != nil {
		return nil, err
	}
	return c.outline(ctx)
}

// Close releases the parser and tree.
func (c *Client) Close() {
	c.closeTree()
	if c.parser != nil {
		c.parser.Close()
		c.parser = nil
	}
}

func (c *Client) closeTree() {
	if c.tree != nil {
		c.tree.Close()
		c.tree = nil
	}
}

func (c *Client) sourceBytes() []byte {
	if c.source == nil {
		c.source = []byte(c.content.String())
	}
	return c.source
}

// parse brings the tree up to date with the mirror and widens the dirty
// region by whatever the grammar re-validated.
func (c *Client) parse(ctx context.Context) error {
	if c.tree != nil && !c.edited {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	old := c.tree
	tree, err := c.parser.ParseCtx(ctx, old, c.sourceBytes())
	if err != nil || tree == nil {
		c.parser.Reset()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to parse %s: %w", c.lang.Name(), err)
	}

	if old == nil {
		c.markDirty(syntax.NewSpan(0, c.content.Len()))
	} else {
		if changed, ok := changedSpan(c.content, old.RootNode(), tree.RootNode()); ok {
			c.markDirty(changed)
		}
		old.Close()
	}
	c.tree = tree
	c.edited = false
	log.Debug().Str("language", c.lang.Name()).Stringer("dirty", c.dirty).Msg("parsed")
	return nil
}

func (c *Client) markDirty(s syntax.Span) {
	if c.hasDirty {
		c.dirty = c.dirty.Union(s)
		return
	}
	c.dirty, c.hasDirty = s, true
}
