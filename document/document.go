// Package document binds a text buffer to a language and routes edits and
// parse requests to the grammar client or to the regex parsers.
package document

import (
	"context"
	"fmt"
	"sync"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
	"github.com/roveo/topo-syntax/treesitter"
)

// Document is one (text, language) pairing. Edits must be noted in the order
// they happened; calls are serialized.
type Document struct {
	mu   sync.Mutex
	lang languages.Language

	// Exactly one of client and regex is set.
	client  *treesitter.Client
	regex   languages.RegexLanguage
	content *treesitter.Content
}

// New binds text to lang. Grammar languages resolve injected languages
// through the registry.
func New(lang languages.Language, text string) (*Document, error) {
	d := &Document{lang: lang}

	switch l := lang.(type) {
	case languages.GrammarLanguage:
		client, err := treesitter.NewClient(l, nil)
		if err != nil {
			return nil, err
		}
		client.Reset(text)
		d.client = client
		d.content = client.Content()
	case languages.RegexLanguage:
		d.regex = l
		d.content = treesitter.NewContent(text)
	default:
		return nil, fmt.Errorf("language %s has neither grammar nor rules: %w", lang.Name(), languages.ErrUnknownLanguage)
	}

	return d, nil
}

// Open binds text to the language named langName, or to the language of path
// when langName is empty.
func Open(langName, path, text string) (*Document, error) {
	lang, err := languages.Resolve(langName, path)
	if err != nil {
		return nil, err
	}
	return New(lang, text)
}

func (d *Document) Language() languages.Language { return d.lang }

// Text returns the current text.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content.String()
}

// Len returns the text length in characters.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content.Len()
}

// NoteEdit records an edit. edited is in post-edit coordinates.
func (d *Document) NoteEdit(edited syntax.Span, delta int, inserted string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client.NoteEdit(edited, delta, inserted)
	}
	_, err := d.content.ApplyEdit(edited, delta, inserted)
	return err
}

// Reset replaces the whole text.
func (d *Document) Reset(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		d.client.Reset(text)
		return
	}
	d.content.Reset(text)
}

// Highlight returns the highlights of r. Grammar documents extend r to what
// the noted edits invalidated; regex documents parse the whole lines r
// touches.
func (d *Document) Highlight(ctx context.Context, r syntax.Span) (*treesitter.ParseResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client.ParseHighlights(ctx, d.content.String(), r)
	}

	if r.Lower < 0 || r.Upper > d.content.Len() || r.Lower > r.Upper {
		return nil, fmt.Errorf("highlight %s of %d characters: %w", r, d.content.Len(), syntax.ErrInvalidRange)
	}
	update := d.content.LineSpan(r)
	highlights, err := d.regex.Highlighter().ParseRunes(ctx, d.content.Runes(), update)
	if err != nil {
		return nil, err
	}
	return &treesitter.ParseResult{Highlights: highlights, UpdateRange: update}, nil
}

// HighlightAll returns the highlights of the whole text.
func (d *Document) HighlightAll(ctx context.Context) (*treesitter.ParseResult, error) {
	return d.Highlight(ctx, syntax.NewSpan(0, d.Len()))
}

// Outline returns the outline of the whole text in document order.
func (d *Document) Outline(ctx context.Context) ([]syntax.OutlineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client.ParseOutline(ctx, d.content.String())
	}
	return d.regex.Outliner().ParseRunes(ctx, d.content.Runes(), syntax.NewSpan(0, d.content.Len()))
}

// Update replaces the text with text by noting the edits between the two
// versions, and returns them.
func (d *Document) Update(text string) ([]Edit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	edits := EditsBetween(d.content.String(), text)
	for _, e := range edits {
		var err error
		if d.client != nil {
			err = d.client.NoteEdit(e.Range, e.Delta, e.Inserted)
		} else {
			_, err = d.content.ApplyEdit(e.Range, e.Delta, e.Inserted)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", e, err)
		}
	}
	return edits, nil
}

// Close releases the grammar client.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		d.client.Close()
	}
}
