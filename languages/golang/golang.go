// Package golang registers the Go grammar.
package golang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

func init() {
	languages.Register(New())
}

// Language implements the Go grammar language
type Language struct {
	*languages.Grammar
}

// New returns the Go language with its queries.
func New() *Language {
	return &Language{Grammar: languages.NewGrammar(golang.GetLanguage, languages.QuerySource{
		Highlights: highlightsQuery,
		Outline:    outlineQuery,
	})}
}

func (g *Language) Name() string {
	return "go"
}

func (g *Language) Extensions() []string {
	return []string{".go"}
}

// OutlineTitle renders functions and methods with their signatures and
// declarations with their keyword.
func (g *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	switch node.Type() {
	case "function_declaration":
		return functionTitle(node, content)
	case "method_declaration":
		return methodTitle(node, content)
	case "type_spec":
		name := languages.FieldText(node, "name", content)
		return strings.TrimSpace("type " + name + " " + getTypeKind(node.ChildByFieldName("type"), content))
	case "const_spec":
		return "const " + strings.Join(specNames(node, content), ", ")
	case "var_spec":
		return "var " + strings.Join(specNames(node, content), ", ")
	case "field_declaration":
		names := specNames(node, content)
		if len(names) == 0 {
			// Embedded field.
			return languages.FieldText(node, "type", content)
		}
		return strings.Join(names, ", ") + " " + languages.FieldText(node, "type", content)
	}
	return ""
}

// functionTitle renders "name(params) result"
func functionTitle(node *sitter.Node, content []byte) string {
	name := languages.FieldText(node, "name", content)
	return name + formatSignature(node.ChildByFieldName("parameters"), node.ChildByFieldName("result"), content)
}

// methodTitle renders "(receiver) name(params) result"
func methodTitle(node *sitter.Node, content []byte) string {
	receiver := formatReceiver(node.ChildByFieldName("receiver"), content)
	return "(" + receiver + ") " + functionTitle(node, content)
}

// specNames extracts identifier names from a const_spec, var_spec or
// field_declaration
func specNames(node *sitter.Node, content []byte) []string {
	var names []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "identifier" || child.Type() == "field_identifier" {
			names = append(names, child.Content(content))
		}
	}

	return names
}

// formatSignature formats function parameters and return types
func formatSignature(params, result *sitter.Node, content []byte) string {
	var sb strings.Builder

	sb.WriteString("(")
	if params != nil {
		var paramTypes []string
		for i := 0; i < int(params.NamedChildCount()); i++ {
			child := params.NamedChild(i)
			switch child.Type() {
			case "parameter_declaration":
				typeStr := languages.FieldText(child, "type", content)
				if typeStr == "" {
					continue
				}
				count := max(len(specNames(child, content)), 1)
				for range count {
					paramTypes = append(paramTypes, typeStr)
				}
			case "variadic_parameter_declaration":
				paramTypes = append(paramTypes, "..."+languages.FieldText(child, "type", content))
			}
		}
		sb.WriteString(strings.Join(paramTypes, ", "))
	}
	sb.WriteString(")")

	if resultStr := formatResult(result, content); resultStr != "" {
		sb.WriteString(" ")
		sb.WriteString(resultStr)
	}

	return sb.String()
}

// formatResult formats the return type(s)
func formatResult(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}

	if node.Type() != "parameter_list" {
		return node.Content(content)
	}

	var types []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "parameter_declaration" {
			if t := languages.FieldText(child, "type", content); t != "" {
				types = append(types, t)
			}
		}
	}

	if len(types) == 1 {
		return types[0]
	}
	return "(" + strings.Join(types, ", ") + ")"
}

// formatReceiver formats the method receiver type
func formatReceiver(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "parameter_declaration" {
			return languages.FieldText(child, "type", content)
		}
	}

	return ""
}

// getTypeKind determines if a type is struct, interface, or an alias
func getTypeKind(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}

	switch node.Type() {
	case "struct_type":
		return "struct"
	case "interface_type":
		return "interface"
	default:
		return languages.CollapseSpace(node.Content(content))
	}
}
