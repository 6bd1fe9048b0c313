// Package python registers the Python grammar.
package python

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

func init() {
	languages.Register(New())
}

// Language implements the Python grammar language
type Language struct {
	*languages.Grammar
}

// New returns the Python language with its queries.
func New() *Language {
	return &Language{Grammar: languages.NewGrammar(python.GetLanguage, languages.QuerySource{
		Highlights: highlightsQuery,
		Outline:    outlineQuery,
	})}
}

func (p *Language) Name() string {
	return "python"
}

func (p *Language) Extensions() []string {
	return []string{".py", ".pyi"}
}

func (p *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	switch node.Type() {
	case "function_definition":
		name := languages.FieldText(node, "name", content)
		return "def " + name + formatSignature(node.ChildByFieldName("parameters"), node.ChildByFieldName("return_type"), content)
	case "class_definition":
		return classTitle(node, content)
	case "decorator":
		return "@" + extractDecorator(node, content)
	}
	return ""
}

func classTitle(node *sitter.Node, content []byte) string {
	var sb strings.Builder
	sb.WriteString("class ")
	sb.WriteString(languages.FieldText(node, "name", content))
	if superclass := node.ChildByFieldName("superclasses"); superclass != nil {
		if bases := extractBases(superclass, content); len(bases) > 0 {
			sb.WriteString("(")
			sb.WriteString(strings.Join(bases, ", "))
			sb.WriteString(")")
		}
	}
	return sb.String()
}

func extractDecorator(node *sitter.Node, content []byte) string {
	text := node.Content(content)
	text = strings.TrimPrefix(text, "@")
	if idx := strings.Index(text, "("); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func extractBases(node *sitter.Node, content []byte) []string {
	var bases []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "keyword_argument" {
			bases = append(bases, child.Content(content))
		}
	}

	return bases
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
