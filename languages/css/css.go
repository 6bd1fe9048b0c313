// Package css registers the CSS grammar.
package css

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

const highlightsQuery = `
(comment) @comments

(string_value) @strings

(integer_value) @numbers
(float_value) @numbers

(color_value) @values
(plain_value) @values

(property_name) @attributes

(tag_name) @types
(class_name) @types
(id_name) @types

(function_name) @commands

["@media" "@import" "@charset" "@namespace" "@supports" "@keyframes"] @keywords
(important) @keywords
`

const outlineQuery = `
(rule_set (selectors) @name) @container
(media_statement) @container
(keyframes_statement (keyframes_name) @name) @container
(comment) @mark
`

func init() {
	languages.Register(New())
}

// Language implements the CSS grammar language
type Language struct {
	*languages.Grammar
}

// New returns the CSS language with its queries.
func New() *Language {
	return &Language{Grammar: languages.NewGrammar(css.GetLanguage, languages.QuerySource{
		Highlights: highlightsQuery,
		Outline:    outlineQuery,
	})}
}

func (c *Language) Name() string         { return "css" }
func (c *Language) Extensions() []string { return []string{".css"} }

func (c *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	switch node.Type() {
	case "media_statement":
		head, _, _ := strings.Cut(node.Content(content), "{")
		return head
	case "keyframes_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child.Type() == "keyframes_name" {
				return "@keyframes " + child.Content(content)
			}
		}
	}
	return ""
}
