package python

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

// rows renders items as "<indent><title>" for compact comparison
func rows(items []syntax.OutlineItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.Repeat("  ", item.Indent.Level) + item.Title
	}
	return out
}

func TestLanguageMetadata(t *testing.T) {
	lang := New()

	if lang.Name() != "python" {
		t.Errorf("expected name 'python', got %q", lang.Name())
	}

	exts := lang.Extensions()
	if len(exts) != 2 || exts[0] != ".py" {
		t.Errorf("expected extensions [.py .pyi], got %v", exts)
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
			src: `def greet(name: str) -> str:
    """Say hello to someone."""
    return f"Hello, {name}"
`,
			want: []string{"def greet(name: str) -> str"},
		},
		{
			name: "class with methods",
			src: `class Animal(Base, Mixin):
    def speak(self) -> str:
        pass

    def eat(self, food):
        pass
`,
			want: []string{"class Animal(Base, Mixin)", "  def speak(self) -> str", "  def eat(self, food)"},
		},
		{
			name: "class with keyword bases",
			src: `class Meta(Base, metaclass=ABCMeta):
    pass
`,
			want: []string{"class Meta(Base)"},
		},
		{
			name: "decorated function",
			src: `@app.route("/")
def index():
    pass
`,
			want: []string{"@app.route", "def index()"},
		},
		{
			name: "module level variables",
			src: `MAX_SIZE = 100
_private = 1

def f():
    local = 2
`,
			want: []string{"MAX_SIZE", "def f()"},
		},
		{
			name: "async function",
			src: `async def fetch(url):
    pass
`,
			want: []string{"def fetch(url)"},
		},
		{
			name: "mark comment",
			src: `# MARK: Helpers
def helper():
    pass
`,
			want: []string{"Helpers", "def helper()"},
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

func TestOutlineDecoratedMethodNesting(t *testing.T) {
	src := `class Service:
    @property
    def name(self):
        return "x"
`
	items := parseOutline(t, src)
	want := []string{"class Service", "  @property", "  def name(self)"}
	if got := rows(items); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if items[1].Kind != syntax.KindAttribute {
		t.Errorf("expected attribute kind, got %v", items[1].Kind)
	}
}

func TestHighlights(t *testing.T) {
	src := `# comment
@dataclass
class Point:
    def norm(self, scale: float) -> float:
        print("x\n", 42, None)
        return self.x
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
		{"# comment", syntax.Comments},
		{"@dataclass", syntax.Attributes},
		{"class Point", syntax.Keywords},
		{"Point", syntax.Types},
		{"norm", syntax.Commands},
		{"float)", syntax.Types},
		{"print", syntax.Commands},
		{`"x`, syntax.Strings},
		{`\n`, syntax.Characters},
		{"42", syntax.Numbers},
		{"None", syntax.Values},
		{"return", syntax.Keywords},
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
