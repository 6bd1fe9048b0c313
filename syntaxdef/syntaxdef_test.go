package syntaxdef

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
)

func hl(lower, upper int, c syntax.Category) syntax.Highlight {
	return syntax.NewRanged(syntax.NewSpan(lower, upper), c)
}

func builtin(t *testing.T, name string) *Language {
	t.Helper()
	langs, err := Builtins()
	require.NoError(t, err)
	for _, lang := range langs {
		if lang.Name() == name {
			return lang
		}
	}
	t.Fatalf("no built-in definition %q", name)
	return nil
}

func highlightAll(t *testing.T, lang *Language, text string) []syntax.Highlight {
	t.Helper()
	out, err := lang.Highlighter().Parse(context.Background(), text, syntax.NewSpan(0, len([]rune(text))))
	require.NoError(t, err)
	return out
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"missing name", "extensions: [.x]\n"},
		{"unknown field", "name: x\ncolour: red\n"},
		{"malformed", "name: [\n"},
		{"regex without pattern", "name: x\nhighlights:\n  keywords:\n    regex:\n      - ignore_case: true\n"},
		{"unknown regex field", "name: x\nhighlights:\n  keywords:\n    regex:\n      - pattern: a\n        flags: i\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestCompileRejectsStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown category", "name: x\nhighlights:\n  colours:\n    words: [a]\n"},
		{"unknown escape", "name: x\nescape: sometimes\n"},
		{"unknown outline kind", "name: x\noutline:\n  - pattern: a\n    kind: chapter\n"},
		{"half block comment", "name: x\ncomment:\n  block_begin: '/*'\n"},
		{"empty nestable", "name: x\nnestables:\n  - category: strings\n"},
		{"nestable category", "name: x\nnestables:\n  - inline: '#'\n    category: notes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = def.Compile()
			require.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestCompileSkipsMalformedRules(t *testing.T) {
	def, err := Parse([]byte(`
name: x
highlights:
  keywords:
    regex: ["(", "foo"]
outline:
  - pattern: "["
  - pattern: "^bar"
`))
	require.NoError(t, err)
	lang, err := def.Compile()
	require.NoError(t, err)

	assert.Equal(t, []syntax.Highlight{hl(0, 3, syntax.Keywords)}, highlightAll(t, lang, "foo bar"))

	items, err := lang.Outliner().Parse(context.Background(), "bar\n")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bar", items[0].Title)
}

func TestCompilePerRuleIgnoreCase(t *testing.T) {
	def, err := Parse([]byte(`
name: x
highlights:
  keywords:
    words: [if]
    ignore_case_words: [select]
  numbers:
    regex:
      - '0x[0-9a-f]+'
      - pattern: '0b[01]+'
        ignore_case: true
  strings:
    ranges:
      - begin: "<<"
        end: "END"
        multiline: true
        ignore_case: true
`))
	require.NoError(t, err)
	lang, err := def.Compile()
	require.NoError(t, err)

	assert.Equal(t, []syntax.Highlight{
		hl(0, 2, syntax.Keywords),
		hl(6, 12, syntax.Keywords),
		hl(13, 19, syntax.Keywords),
		hl(20, 24, syntax.Numbers),
		hl(30, 34, syntax.Numbers),
		hl(35, 42, syntax.Strings),
	}, highlightAll(t, lang, "if IF select SELECT 0xff 0XFF 0B11 <<a end"))
}

func TestCompileRuleOverridesDefinitionIgnoreCase(t *testing.T) {
	def, err := Parse([]byte(`
name: x
ignore_case: true
highlights:
  keywords:
    words: [begin]
  types:
    regex:
      - pattern: 'Int'
        ignore_case: false
`))
	require.NoError(t, err)
	lang, err := def.Compile()
	require.NoError(t, err)

	assert.Equal(t, []syntax.Highlight{
		hl(0, 5, syntax.Keywords),
		hl(6, 9, syntax.Types),
	}, highlightAll(t, lang, "BEGIN Int INT"))
}

func TestCompileCommentDelimiters(t *testing.T) {
	def, err := Parse([]byte(`
name: x
comment:
  inline: "//"
  block_begin: "/*"
  block_end: "*/"
nestables:
  - begin: '"'
    end: '"'
    category: strings
`))
	require.NoError(t, err)
	lang, err := def.Compile()
	require.NoError(t, err)

	text := `a /* b */ "// c" // d`
	assert.Equal(t, []syntax.Highlight{
		hl(2, 9, syntax.Comments),
		hl(10, 16, syntax.Strings),
		hl(17, 21, syntax.Comments),
	}, highlightAll(t, lang, text))
}

func TestBuiltins(t *testing.T) {
	langs, err := Builtins()
	require.NoError(t, err)

	var names []string
	for _, lang := range langs {
		names = append(names, lang.Name())
		assert.NotEmpty(t, lang.Extensions())
	}
	assert.ElementsMatch(t, []string{"markdown", "ini", "shell"}, names)

	for _, ext := range []string{".md", ".ini", ".sh"} {
		_, ok := languages.GetLanguageForFile("file" + ext).(languages.RegexLanguage)
		assert.True(t, ok, ext)
	}
}

func TestMarkdown(t *testing.T) {
	lang := builtin(t, "markdown")
	text := "# Title\n\nSome `code` here.\n<!-- note -->\n\n## Sub ##\n---\n"

	highlights := highlightAll(t, lang, text)
	assert.Contains(t, highlights, hl(0, 1, syntax.Keywords))
	assert.Contains(t, highlights, hl(14, 20, syntax.Strings))
	assert.Contains(t, highlights, hl(27, 40, syntax.Comments))
	assert.Contains(t, highlights, hl(42, 44, syntax.Keywords))

	items, err := lang.Outliner().Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Title", items[0].Title)
	assert.Equal(t, syntax.KindHeading, items[0].Kind)
	assert.Equal(t, syntax.NewSpan(0, 7), items[0].Span)
	assert.Equal(t, "Sub", items[1].Title)
	assert.True(t, items[2].IsSeparator())
}

func TestIni(t *testing.T) {
	lang := builtin(t, "ini")
	text := "[server]\nport = 8080\n; note\nname = \"x\"\n"

	assert.Equal(t, []syntax.Highlight{
		hl(0, 8, syntax.Types),
		hl(9, 13, syntax.Attributes),
		hl(16, 20, syntax.Numbers),
		hl(21, 27, syntax.Comments),
		hl(28, 32, syntax.Attributes),
		hl(35, 38, syntax.Strings),
	}, highlightAll(t, lang, text))

	items, err := lang.Outliner().Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "server", items[0].Title)

	assert.Equal(t, []syntax.Highlight{
		hl(0, 5, syntax.Attributes),
		hl(8, 12, syntax.Values),
		hl(13, 16, syntax.Attributes),
		hl(19, 21, syntax.Values),
	}, highlightAll(t, lang, "debug = TRUE\nlog = no\n"))
}

func TestShell(t *testing.T) {
	lang := builtin(t, "shell")
	text := "# MARK: Setup\nbuild() {\n  echo \"$HOME\" 2\n}\n"

	highlights := highlightAll(t, lang, text)
	assert.Contains(t, highlights, hl(0, 13, syntax.Comments))
	assert.Contains(t, highlights, hl(14, 19, syntax.Commands))
	assert.Contains(t, highlights, hl(26, 30, syntax.Commands))
	assert.Contains(t, highlights, hl(31, 38, syntax.Strings))
	assert.Contains(t, highlights, hl(39, 40, syntax.Numbers))

	items, err := lang.Outliner().Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, syntax.KindMark, items[0].Kind)
	assert.Equal(t, "Setup", items[0].Title)
	assert.Equal(t, "build()", items[1].Title)
	assert.Equal(t, syntax.KindFunction, items[1].Kind)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/one.yaml":     {Data: []byte("name: one\nextensions: [.one]\n")},
		"defs/two.yml":      {Data: []byte("name: two\nextensions: [.two]\n")},
		"defs/readme.txt":   {Data: []byte("not a definition")},
		"other/three.yaml":  {Data: []byte("name: three\n")},
		"broken/bad.yaml":   {Data: []byte("extensions: [.bad]\n")},
		"broken/good.yaml":  {Data: []byte("name: good\n")},
		"unknown/cat.yaml":  {Data: []byte("name: cat\nhighlights:\n  nope: {}\n")},
		"defs/nested/4.yml": {Data: []byte("name: four\n")},
	}

	langs, err := LoadFS(fsys, "defs")
	require.NoError(t, err)
	var names []string
	for _, lang := range langs {
		names = append(names, lang.Name())
	}
	assert.ElementsMatch(t, []string{"one", "two", "four"}, names)

	_, err = LoadFS(fsys, "broken")
	require.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = LoadFS(fsys, "unknown")
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestLoadDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.yaml"), []byte(`
name: todo
extensions: [.todo]
highlights:
  keywords:
    words: [TODO, DONE]
`), 0o644))

	require.NoError(t, LoadDirs([]string{dir}))

	lang, ok := languages.GetLanguageForFile("list.todo").(languages.RegexLanguage)
	require.True(t, ok)
	assert.Equal(t, "todo", lang.Name())

	out, err := lang.Highlighter().Parse(context.Background(), "TODO x", syntax.NewSpan(0, 6))
	require.NoError(t, err)
	assert.Equal(t, []syntax.Highlight{hl(0, 4, syntax.Keywords)}, out)

	require.Error(t, LoadDirs([]string{filepath.Join(dir, "missing")}))
}
