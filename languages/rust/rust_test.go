package rust

import (
	"context"
	"strings"
	"testing"

	"github.com/roveo/topo-syntax/syntax"
	"github.com/roveo/topo-syntax/treesitter"
)

func parseOutline(t *testing.T, src string) []syntax.OutlineItem {
	t.Helper()
	client, err := treesitter.NewClient(New(), nil)
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
	lang := New()

	if lang.Name() != "rust" {
		t.Errorf("expected name 'rust', got %q", lang.Name())
	}

	exts := lang.Extensions()
	if len(exts) != 1 || exts[0] != ".rs" {
		t.Errorf("expected extensions [.rs], got %v", exts)
	}

	if _, err := lang.Queries(); err != nil {
		t.Fatalf("queries failed to compile: %v", err)
	}
}

func TestOutline(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "function",
			src:  "pub fn greet(name: &str) -> String {\n    format!(\"hi {}\", name)\n}\n",
			want: []string{"pub fn greet(name: &str) -> String"},
		},
		{
			name: "struct with fields",
			src:  "pub struct Config {\n    pub name: String,\n    port: u16,\n}\n",
			want: []string{"pub struct Config", "  pub name: String", "  port: u16"},
		},
		{
			name: "enum with variants",
			src:  "enum Color {\n    Red,\n    Green,\n}\n",
			want: []string{"enum Color", "  Red", "  Green"},
		},
		{
			name: "trait",
			src:  "pub trait Shape {\n    fn area(&self) -> f64;\n}\n",
			want: []string{"pub trait Shape", "  fn area(&self) -> f64"},
		},
		{
			name: "inherent impl",
			src:  "impl Point {\n    pub fn new() -> Self {\n        Point {}\n    }\n}\n",
			want: []string{"impl Point", "  pub fn new() -> Self"},
		},
		{
			name: "trait impl",
			src:  "impl Display for Point {\n    fn fmt(&self) {}\n}\n",
			want: []string{"impl Display for Point", "  fn fmt(&self)"},
		},
		{
			name: "items",
			src:  "const MAX: u32 = 1;\nstatic NAME: &str = \"x\";\ntype Id = u64;\nmod util {}\n",
			want: []string{"const MAX", "static NAME", "type Id", "mod util"},
		},
		{
			name: "mark comment",
			src:  "// MARK: - Parsing\nfn parse() {}\n",
			want: []string{"", "Parsing", "fn parse()"},
		},
		{
			name: "empty file",
			src:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rows(parseOutline(t, tt.src))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOutlineAttributes(t *testing.T) {
	src := "#[derive(Debug)]\nstruct A {\n    x: i32,\n}\n"
	items := parseOutline(t, src)
	want := []string{"#[derive(Debug)]", "struct A", "  x: i32"}
	if got := rows(items); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if items[0].Kind != syntax.KindAttribute {
		t.Errorf("expected attribute kind, got %v", items[0].Kind)
	}
}

func TestHighlights(t *testing.T) {
	src := `// comment
#[inline]
pub fn run(v: &mut Vec<u8>) -> bool {
    let c = 'x';
    println!("n\t{}", 3.5);
    v.push(7);
    true
}
`
	client, err := treesitter.NewClient(New(), nil)
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
		{"// comment", syntax.Comments},
		{"#[inline]", syntax.Attributes},
		{"pub", syntax.Keywords},
		{"run", syntax.Commands},
		{"mut", syntax.Keywords},
		{"Vec", syntax.Types},
		{"u8", syntax.Types},
		{"let", syntax.Keywords},
		{"'x'", syntax.Characters},
		{"println", syntax.Commands},
		{`"n`, syntax.Strings},
		{`\t`, syntax.Characters},
		{"3.5", syntax.Numbers},
		{"push", syntax.Commands},
		{"7", syntax.Numbers},
		{"true", syntax.Values},
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
