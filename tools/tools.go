// Package tools provides MCP tool implementations for highlighting and
// outlines, and the text formatting shared with the CLI.
package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roveo/topo-syntax/document"
	"github.com/roveo/topo-syntax/gitignore"
	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/syntax"
	"github.com/roveo/topo-syntax/treesitter"
)

// DefaultLineLimit is the default maximum number of lines in tool output
const DefaultLineLimit = 1000

// Config holds server-wide configuration for tools
type Config struct {
	SkipPatterns []string      // Path prefixes to skip in directory outlines
	LineLimit    int           // Maximum lines in output (0 = DefaultLineLimit)
	ParseTimeout time.Duration // Bound on each parse (0 = none)
}

// WithParseTimeout derives the context a single parse runs under.
func (c *Config) WithParseTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c == nil || c.ParseTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.ParseTimeout)
}

func (c *Config) lineLimit() int {
	if c == nil || c.LineLimit == 0 {
		return DefaultLineLimit
	}
	return c.LineLimit
}

// Entry is an outline item with its 0-based line range.
type Entry struct {
	syntax.OutlineItem
	StartLine int
	EndLine   int
}

// FileOutline is the outline of a single source file
type FileOutline struct {
	Path     string // Relative path from the outline root
	Language string
	Entries  []Entry
}

// Source is a file loaded into a document.
type Source struct {
	Path    string
	Text    string
	Doc     *document.Document
	content *treesitter.Content
}

// Open reads path and binds it to language, or to the language its
// extension maps to when language is empty. The caller closes the document.
func Open(path, language string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	text := string(data)
	doc, err := document.Open(language, path, text)
	if err != nil {
		return nil, fmt.Errorf("unsupported file type: %s: %w", path, err)
	}
	return &Source{Path: path, Text: text, Doc: doc, content: treesitter.NewContent(text)}, nil
}

// Close releases the document.
func (s *Source) Close() { s.Doc.Close() }

// Lines returns the text split into lines.
func (s *Source) Lines() []string { return strings.Split(s.Text, "\n") }

// Line returns the 0-based line of a character offset.
func (s *Source) Line(char int) int { return s.content.Line(char) }

// Position renders a character offset as 1-based line:column.
func (s *Source) Position(char int) string {
	line := s.content.Line(char)
	return fmt.Sprintf("%d:%d", line+1, char-s.content.LineStarts()[line]+1)
}

// LineSpan returns the characters of the 1-based lines first to last. Zero
// bounds mean the start and the end of the text.
func (s *Source) LineSpan(first, last int) (syntax.Span, error) {
	starts := s.content.LineStarts()
	if first == 0 {
		first = 1
	}
	if last == 0 {
		last = len(starts)
	}
	if first < 1 || last > len(starts) || first > last {
		return syntax.Span{}, fmt.Errorf("lines %d-%d of %d: %w", first, last, len(starts), syntax.ErrInvalidRange)
	}
	upper := s.content.Len()
	if last < len(starts) {
		upper = starts[last]
	}
	return syntax.NewSpan(starts[first-1], upper), nil
}

// Outline returns the entries of the source's outline.
func (s *Source) Outline(ctx context.Context) ([]Entry, error) {
	items, err := s.Doc.Outline(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(items))
	for i, item := range items {
		last := item.Span.Upper - 1
		if last < item.Span.Lower {
			last = item.Span.Lower
		}
		entries[i] = Entry{OutlineItem: item, StartLine: s.Line(item.Span.Lower), EndLine: s.Line(last)}
	}
	return entries, nil
}

// OutlineDirectory walks the directory and outlines all supported source files
func OutlineDirectory(ctx context.Context, dir string) ([]FileOutline, error) {
	var results []FileOutline

	gitignoreMatcher, _ := gitignore.New(dir)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			relPath = path
		}

		if info.IsDir() {
			name := info.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			if gitignoreMatcher != nil && gitignoreMatcher.Match(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if gitignoreMatcher != nil && gitignoreMatcher.Match(relPath, false) {
			return nil
		}
		lang := languages.GetLanguageForFile(path)
		if lang == nil {
			return nil
		}

		src, err := Open(path, lang.Name())
		if err != nil {
			log.Warn().Err(err).Str("file", relPath).Msg("skipping file")
			return nil
		}
		entries, err := src.Outline(ctx)
		src.Close()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("file", relPath).Msg("skipping file")
			return nil
		}

		results = append(results, FileOutline{
			Path:     relPath,
			Language: lang.Name(),
			Entries:  entries,
		})
		return nil
	})

	return results, err
}

// FindItem finds an outline item by name or title in a file and returns it
// with the source lines it spans.
func FindItem(ctx context.Context, path, language, name string) (Entry, []string, error) {
	src, err := Open(path, language)
	if err != nil {
		return Entry{}, nil, err
	}
	defer src.Close()

	entries, err := src.Outline(ctx)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("failed to parse file: %w", err)
	}

	for _, e := range entries {
		if e.IsSeparator() || !matchesName(e.Title, name) {
			continue
		}
		lines := src.Lines()
		end := e.EndLine
		if end >= len(lines) {
			end = len(lines) - 1
		}
		return e, lines[e.StartLine : end+1], nil
	}
	return Entry{}, nil, fmt.Errorf("item %q not found in %s", name, path)
}

// declarationWords are skipped when looking for the name in an outline title.
var declarationWords = map[string]bool{
	"abstract": true, "async": true, "class": true, "const": true, "def": true,
	"enum": true, "export": true, "fn": true, "function": true, "impl": true,
	"interface": true, "let": true, "mod": true, "pub": true, "static": true,
	"struct": true, "trait": true, "type": true, "var": true,
}

// matchesName reports whether an item titled title is what name refers to:
// either the whole title or the declared name inside it.
func matchesName(title, name string) bool {
	if title == name {
		return true
	}
	// Method receivers come first: "(s *Server) Start() error".
	if strings.HasPrefix(title, "(") {
		if i := strings.Index(title, ") "); i >= 0 {
			title = title[i+2:]
		}
	}
	title = strings.TrimLeft(title, "@#")
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !(r == '_' || r == '$' || r == '.' || r == '-' || isAlnum(r))
	}) {
		if declarationWords[word] {
			continue
		}
		return word == name
	}
	return false
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
