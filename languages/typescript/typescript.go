// Package typescript registers the TypeScript, TSX, JavaScript and JSX grammars.
package typescript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

func init() {
	languages.Register(NewTypeScript())
	languages.Register(NewTSX())
	languages.Register(NewJavaScript())
	languages.Register(NewJSX())
}

// Language is one member of the JavaScript grammar family
type Language struct {
	*languages.Grammar
	name string
	exts []string
}

func (l *Language) Name() string         { return l.name }
func (l *Language) Extensions() []string { return l.exts }

// NewTypeScript returns the TypeScript (.ts) language
func NewTypeScript() *Language {
	return newLanguage("typescript", []string{".ts", ".mts", ".cts"}, typescript.GetLanguage, typedHighlights, typedOutline)
}

// NewTSX returns the TSX (.tsx) language
func NewTSX() *Language {
	return newLanguage("tsx", []string{".tsx"}, tsx.GetLanguage, typedHighlights, typedOutline)
}

// NewJavaScript returns the JavaScript (.js) language
func NewJavaScript() *Language {
	return newLanguage("javascript", []string{".js", ".mjs", ".cjs"}, javascript.GetLanguage, scriptHighlights, scriptOutline)
}

// NewJSX returns the JSX (.jsx) language
func NewJSX() *Language {
	return newLanguage("jsx", []string{".jsx"}, javascript.GetLanguage, scriptHighlights, scriptOutline)
}

func newLanguage(name string, exts []string, lang func() *sitter.Language, highlights, outline string) *Language {
	return &Language{
		Grammar: languages.NewGrammar(lang, languages.QuerySource{
			Highlights: highlights,
			Outline:    outline,
		}),
		name: name,
		exts: exts,
	}
}

func (l *Language) OutlineTitle(node *sitter.Node, kind syntax.OutlineKind, content []byte) string {
	name := languages.FieldText(node, "name", content)

	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		return asyncPrefix(node) + "function " + name + signature(node, content)
	case "method_definition", "method_signature":
		return asyncPrefix(node) + name + signature(node, content)
	case "class_declaration":
		return classTitle("class ", node, content)
	case "abstract_class_declaration":
		return classTitle("abstract class ", node, content)
	case "interface_declaration":
		return "interface " + name
	case "enum_declaration":
		return "enum " + name
	case "type_alias_declaration":
		return "type " + name
	case "variable_declarator":
		return declarationKind(node.Parent(), content) + " " + name
	case "decorator":
		return languages.CollapseSpace(node.Content(content))
	}
	return ""
}

func classTitle(prefix string, node *sitter.Node, content []byte) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(languages.FieldText(node, "name", content))

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		extends, implements := extractHeritage(child, content)
		if extends != "" {
			sb.WriteString(" extends ")
			sb.WriteString(extends)
		}
		if len(implements) > 0 {
			sb.WriteString(" implements ")
			sb.WriteString(strings.Join(implements, ", "))
		}
	}
	return sb.String()
}

// extractHeritage reads TypeScript extends/implements clauses. JavaScript
// heritage holds the extended expression directly.
func extractHeritage(node *sitter.Node, content []byte) (string, []string) {
	var extends string
	var implements []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "extends_clause":
			if child.NamedChildCount() > 0 {
				extends = child.NamedChild(0).Content(content)
			}
		case "implements_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				impl := child.NamedChild(j)
				implements = append(implements, impl.Content(content))
			}
		default:
			if extends == "" {
				extends = child.Content(content)
			}
		}
	}

	return extends, implements
}

// declarationKind returns const, let or var for a declaration node
func declarationKind(node *sitter.Node, content []byte) string {
	if node == nil {
		return "var"
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		switch text := node.Child(i).Content(content); text {
		case "const", "let":
			return text
		}
	}
	return "var"
}

func signature(node *sitter.Node, content []byte) string {
	return formatSignature(node.ChildByFieldName("parameters"), node.ChildByFieldName("return_type"), content)
}

func formatSignature(params, returnType *sitter.Node, content []byte) string {
	var sb strings.Builder

	if params != nil {
		sb.WriteString(params.Content(content))
	} else {
		sb.WriteString("()")
	}

	if returnType != nil {
		retStr := returnType.Content(content)
		// The return_type node sometimes includes the colon, sometimes not
		if !strings.HasPrefix(retStr, ":") {
			sb.WriteString(": ")
		}
		sb.WriteString(retStr)
	}

	return sb.String()
}

func asyncPrefix(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			return "async "
		}
	}
	return ""
}
