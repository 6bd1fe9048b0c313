package typescript

import (
	"context"
	"strings"
	"testing"

	"github.com/roveo/topo-syntax/syntax"
	"github.com/roveo/topo-syntax/treesitter"
)

func parseOutline(t *testing.T, lang *Language, src string) []syntax.OutlineItem {
	t.Helper()
	client, err := treesitter.NewClient(lang, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	items, err := client.ParseOutline(context.Background(), src)
	if err != nil {
		t.Fatalf("ParseOutline failed: %v", err)
	}
	return items
}

func rows(items []syntax.OutlineItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.Repeat("  ", item.Indent.Level) + item.Title
	}
	return out
}

func TestLanguageMetadata(t *testing.T) {
	tests := []struct {
		lang *Language
		name string
		ext  string
	}{
		{NewTypeScript(), "typescript", ".ts"},
		{NewTSX(), "tsx", ".tsx"},
		{NewJavaScript(), "javascript", ".js"},
		{NewJSX(), "jsx", ".jsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.lang.Name() != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, tt.lang.Name())
			}
			if tt.lang.Extensions()[0] != tt.ext {
				t.Errorf("expected first extension %q, got %v", tt.ext, tt.lang.Extensions())
			}
			if _, err := tt.lang.Queries(); err != nil {
				t.Fatalf("queries failed to compile: %v", err)
			}
		})
	}
}

func TestOutlineTypeScript(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "function",
			src:  "function greet(name: string): string {\n  return name;\n}\n",
			want: []string{"function greet(name: string): string"},
		},
		{
			name: "async function",
			src:  "async function load(url: string): Promise<void> {}\n",
			want: []string{"async function load(url: string): Promise<void>"},
		},
		{
			name: "class",
			src: `class Dog extends Animal implements Pet, Named {
  name: string;
  bark(times: number): void {}
}
`,
			want: []string{"class Dog extends Animal implements Pet, Named", "  name", "  bark(times: number): void"},
		},
		{
			name: "interface",
			src:  "interface Shape {\n  area(): number;\n  label: string;\n}\n",
			want: []string{"interface Shape", "  area(): number", "  label"},
		},
		{
			name: "type alias and enum",
			src:  "type ID = string;\nenum Color { Red, Green }\n",
			want: []string{"type ID", "enum Color"},
		},
		{
			name: "variables",
			src:  "const a = 1;\nlet b = 2;\nexport const c = 3;\nfunction f() { const local = 4; }\n",
			want: []string{"const a", "let b", "const c", "function f()"},
		},
		{
			name: "empty file",
			src:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rows(parseOutline(t, NewTypeScript(), tt.src))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOutlineJavaScript(t *testing.T) {
	src := `// MARK: Models
class Cat extends Base {
  meow() {}
}

var count = 0;
`
	got := rows(parseOutline(t, NewJavaScript(), src))
	want := []string{"Models", "class Cat extends Base", "  meow()", "var count"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHighlights(t *testing.T) {
	src := `// note
export class Box {
  size: number = 3;
  open(): boolean {
    return this.check("a\n", null);
  }
}
`
	client, err := treesitter.NewClient(NewTypeScript(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	res, err := client.ParseHighlights(context.Background(), src, syntax.NewSpan(0, len([]rune(src))))
	if err != nil {
		t.Fatalf("ParseHighlights failed: %v", err)
	}

	tests := []struct {
		needle string
		want   syntax.Category
	}{
		{"// note", syntax.Comments},
		{"export", syntax.Keywords},
		{"class", syntax.Keywords},
		{"Box", syntax.Types},
		{"number", syntax.Types},
		{"3", syntax.Numbers},
		{"open", syntax.Commands},
		{"boolean", syntax.Types},
		{"return", syntax.Keywords},
		{"this", syntax.Variables},
		{"check", syntax.Commands},
		{`"a`, syntax.Strings},
		{`\n`, syntax.Characters},
		{"null", syntax.Values},
	}
	for _, tt := range tests {
		idx := strings.Index(src, tt.needle)
		if idx < 0 {
			t.Fatalf("%q not in source", tt.needle)
		}
		got := syntax.Category(-1)
		for _, h := range res.Highlights {
			if h.Span.Contains(idx) {
				got = h.Value
			}
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.needle, tt.want, got)
		}
	}
}
