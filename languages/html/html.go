// Package html registers the HTML grammar. Script and style elements are
// highlighted through injected JavaScript and CSS.
package html

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

const highlightsQuery = `
(comment) @comments
(doctype) @keywords.directive
(tag_name) @keywords.tag
(attribute_name) @attributes
(attribute_value) @strings
(quoted_attribute_value) @strings
`

const injectionsQuery = `
(script_element (raw_text) @injection.javascript)
(style_element (raw_text) @injection.css)
`

const outlineQuery = `
(element
  (start_tag (tag_name) @_tag)
  (#match? @_tag "^[hH][1-6]$")) @heading

(element
  (start_tag
    (attribute
      (attribute_name) @_attr
      (quoted_attribute_value (attribute_value) @name)))
  (#eq? @_attr "id")) @container

(comment) @mark
`

func init() {
	languages.Register(New())
}

// Language implements the HTML grammar language
type Language struct {
	*languages.Grammar
}

// New returns the HTML language with its queries.
func New() *Language {
	return &Language{Grammar: languages.NewGrammar(html.GetLanguage, languages.QuerySource{
		Highlights: highlightsQuery,
		Outline:    outlineQuery,
		Injections: injectionsQuery,
	})}
}

func (h *Language) Name() string         { return "html" }
func (h *Language) Extensions() []string { return []string{".html", ".htm"} }

func (h *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	if node.Type() != "element" {
		return ""
	}
	switch kind {
	case syntax.KindHeading:
		var words []string
		collectText(node, content, &words)
		return strings.Join(words, " ")
	case syntax.KindContainer:
		if id := elementID(node, content); id != "" {
			return tagName(node, content) + "#" + id
		}
	}
	return ""
}

// collectText gathers the text nodes below an element
func collectText(node *sitter.Node, content []byte, words *[]string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "text":
			if text := languages.CollapseSpace(child.Content(content)); text != "" {
				*words = append(*words, text)
			}
		case "element":
			collectText(child, content, words)
		}
	}
}

func startTag(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "start_tag" || child.Type() == "self_closing_tag" {
			return child
		}
	}
	return nil
}

func tagName(node *sitter.Node, content []byte) string {
	tag := startTag(node)
	if tag == nil {
		return ""
	}
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		if child := tag.NamedChild(i); child.Type() == "tag_name" {
			return strings.ToLower(child.Content(content))
		}
	}
	return ""
}

func elementID(node *sitter.Node, content []byte) string {
	tag := startTag(node)
	if tag == nil {
		return ""
	}
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		attr := tag.NamedChild(i)
		if attr.Type() != "attribute" || attr.NamedChildCount() < 2 {
			continue
		}
		if attr.NamedChild(0).Content(content) != "id" {
			continue
		}
		return strings.Trim(attr.NamedChild(1).Content(content), `"'`)
	}
	return ""
}
