// Package rust registers the Rust grammar.
package rust

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

func init() {
	languages.Register(New())
}

// Language implements the Rust grammar language
type Language struct {
	*languages.Grammar
}

// New returns the Rust language with its queries.
func New() *Language {
	return &Language{Grammar: languages.NewGrammar(rust.GetLanguage, languages.QuerySource{
		Highlights: highlightsQuery,
		Outline:    outlineQuery,
	})}
}

func (r *Language) Name() string         { return "rust" }
func (r *Language) Extensions() []string { return []string{".rs"} }

// itemKeywords maps item nodes to the keyword shown in their title
var itemKeywords = map[string]string{
	"struct_item":             "struct",
	"enum_item":               "enum",
	"trait_item":              "trait",
	"mod_item":                "mod",
	"const_item":              "const",
	"static_item":             "static",
	"type_item":               "type",
	"function_item":           "fn",
	"function_signature_item": "fn",
}

func (r *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	switch node.Type() {
	case "impl_item":
		return implTitle(node, content)
	case "attribute_item":
		return languages.CollapseSpace(node.Content(content))
	case "field_declaration":
		return withVisibility(extractVisibility(node, content),
			languages.FieldText(node, "name", content)+": "+languages.FieldText(node, "type", content))
	}

	keyword, ok := itemKeywords[node.Type()]
	if !ok {
		return ""
	}
	title := keyword + " " + languages.FieldText(node, "name", content)
	if keyword == "fn" {
		title += formatSignature(node.ChildByFieldName("parameters"), node.ChildByFieldName("return_type"), content)
	}
	return withVisibility(extractVisibility(node, content), title)
}

// implTitle renders "impl Trait for Type" or "impl Type"
func implTitle(node *sitter.Node, content []byte) string {
	var sb strings.Builder
	sb.WriteString("impl ")
	if trait := languages.FieldText(node, "trait", content); trait != "" {
		sb.WriteString(trait)
		sb.WriteString(" for ")
	}
	sb.WriteString(languages.FieldText(node, "type", content))
	return sb.String()
}

func withVisibility(vis, title string) string {
	if vis == "" {
		return title
	}
	return vis + " " + title
}

func formatSignature(params, returnType *sitter.Node, content []byte) string {
	var sb strings.Builder

	if params != nil {
		sb.WriteString(params.Content(content))
	} else {
		sb.WriteString("()")
	}

	if returnType != nil {
		sb.WriteString(" -> ")
		sb.WriteString(returnType.Content(content))
	}

	return sb.String()
}

func extractVisibility(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "visibility_modifier" {
			return child.Content(content)
		}
	}
	return ""
}
