package languages

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roveo/topo-syntax/highlight"
	"github.com/roveo/topo-syntax/outline"
	"github.com/roveo/topo-syntax/syntax"
)

// ErrUnknownLanguage is returned when no registered language matches a name
// or file.
var ErrUnknownLanguage = errors.New("unknown language")

// Language is a language the engine can highlight and outline.
type Language interface {
	// Name returns the language identifier (e.g., "go", "python")
	Name() string

	// Extensions returns the file extensions this language handles (e.g., [".go"])
	Extensions() []string
}

// GrammarLanguage is a language backed by a tree-sitter grammar and capture
// queries.
type GrammarLanguage interface {
	Language
	// TreeSitterLang returns the tree-sitter language for parsing
	TreeSitterLang() *sitter.Language
	// Queries returns the compiled capture queries. They are compiled on
	// first use and shared afterwards.
	Queries() (*Queries, error)
}

// OutlineTitler is an optional interface for grammar languages that build
// richer outline titles than the captured name, such as signatures.
type OutlineTitler interface {
	// OutlineTitle returns the title for a captured node, or "" to keep the
	// default title.
	OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string
}

// RegexLanguage is a language described by regular expression rules.
type RegexLanguage interface {
	Language
	Highlighter() *highlight.Parser
	Outliner() *outline.Parser
}

// Provider resolves grammar languages by name, for example to parse text
// embedded in another language.
type Provider func(name string) (GrammarLanguage, bool)
