package languages

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// QuerySource holds the text of a language's capture queries.
type QuerySource struct {
	// Highlights captures use category names as roots ("@keywords",
	// "@types.builtin").
	Highlights string
	// Outline captures use outline kinds ("@function", "@container") with
	// an optional "@name" capture for the title.
	Outline string
	// Injections captures name the embedded language
	// ("@injection.javascript").
	Injections string
}

// Queries are compiled capture queries. A nil query means the language has
// none of that kind.
type Queries struct {
	Highlights *sitter.Query
	Outline    *sitter.Query
	Injections *sitter.Query
}

// Grammar implements GrammarLanguage for languages that embed it.
type Grammar struct {
	lang   func() *sitter.Language
	source QuerySource

	once    sync.Once
	queries *Queries
	err     error
}

// NewGrammar returns a grammar whose queries are compiled on first use.
func NewGrammar(lang func() *sitter.Language, source QuerySource) *Grammar {
	return &Grammar{lang: lang, source: source}
}

func (g *Grammar) TreeSitterLang() *sitter.Language {
	return g.lang()
}

func (g *Grammar) Queries() (*Queries, error) {
	g.once.Do(func() {
		g.queries, g.err = compileQueries(g.lang(), g.source)
	})
	return g.queries, g.err
}

func compileQueries(lang *sitter.Language, source QuerySource) (*Queries, error) {
	q := &Queries{}
	var err error
	if q.Highlights, err = compileQuery(lang, "highlights", source.Highlights); err != nil {
		return nil, err
	}
	if q.Outline, err = compileQuery(lang, "outline", source.Outline); err != nil {
		return nil, err
	}
	if q.Injections, err = compileQuery(lang, "injections", source.Injections); err != nil {
		return nil, err
	}
	return q, nil
}

func compileQuery(lang *sitter.Language, kind, source string) (*sitter.Query, error) {
	if source == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(source), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s query: %w", kind, err)
	}
	return q, nil
}
