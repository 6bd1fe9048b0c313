// Package gitignore decides which paths of a directory tree are ignored by
// the .gitignore files inside it.
package gitignore

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"
)

// Matcher holds the compiled patterns of every .gitignore under a root, in
// the order git applies them.
type Matcher struct {
	root     string
	patterns []*pattern
}

// pattern is a single .gitignore line.
type pattern struct {
	pattern  string // cleaned glob
	negation bool   // leading !
	dirOnly  bool   // trailing /
	anchored bool   // contains a / before the end
	baseDir  string // directory of the .gitignore, relative to the root
	re       *regexp2.Regexp
}

// New loads every .gitignore below root, skipping hidden directories.
// Unreadable files and unusable patterns are logged and skipped.
func New(root string) (*Matcher, error) {
	m := &Matcher{root: root}

	err := fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != "." && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if d.Name() != ".gitignore" || d.IsDir() {
			return nil
		}
		baseDir := path.Dir(p)
		if baseDir == "." {
			baseDir = ""
		}
		if err := m.loadFile(filepath.Join(root, filepath.FromSlash(p)), baseDir); err != nil {
			log.Warn().Err(err).Str("file", p).Msg("skipping .gitignore")
		}
		return nil
	})

	return m, err
}

func (m *Matcher) loadFile(file, baseDir string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		p := parseLine(scanner.Text(), baseDir)
		if p == nil {
			continue
		}
		if err := p.compile(); err != nil {
			log.Warn().Err(err).Str("pattern", p.pattern).Msg("skipping gitignore pattern")
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return scanner.Err()
}

// parseLine reads one .gitignore line. Blank lines and comments yield nil.
func parseLine(line string, baseDir string) *pattern {
	// Trailing spaces are dropped unless the last one is escaped.
	trimmed := strings.TrimRight(line, " ")
	if strings.HasSuffix(trimmed, "\\") && len(trimmed) < len(line) {
		trimmed = trimmed[:len(trimmed)-1] + " "
	}
	line = trimmed

	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &pattern{baseDir: baseDir}
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		p.negation = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		p.dirOnly = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		p.anchored = true
		line = rest
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}
	if line == "" {
		return nil
	}

	p.pattern = line
	return p
}

// compile turns the glob into an expression matched against whole paths
// relative to the root.
func (p *pattern) compile() error {
	var sb strings.Builder
	sb.WriteString("^")
	if p.baseDir != "" {
		sb.WriteString(regexp2.Escape(p.baseDir) + "/")
	}
	if !p.anchored {
		sb.WriteString("(?:.*/)?")
	}
	sb.WriteString(globExpr(p.pattern))
	sb.WriteString("$")

	re, err := regexp2.Compile(sb.String(), regexp2.None)
	if err != nil {
		return fmt.Errorf("compiling %q: %w", p.pattern, err)
	}
	p.re = re
	return nil
}

// globExpr translates gitignore glob syntax: * and ? stay within one path
// component, ** crosses components, [...] is a character class.
func globExpr(glob string) string {
	var sb strings.Builder
	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		rest := string(runes[i:])
		switch {
		case strings.HasPrefix(rest, "**/"):
			sb.WriteString("(?:.*/)?")
			i += 2
		case rest == "/**":
			sb.WriteString("/.*")
			i += 2
		case strings.HasPrefix(rest, "**"):
			sb.WriteString(".*")
			i++
		case runes[i] == '*':
			sb.WriteString("[^/]*")
		case runes[i] == '?':
			sb.WriteString("[^/]")
		case runes[i] == '\\' && i+1 < len(runes):
			i++
			sb.WriteString(regexp2.Escape(string(runes[i])))
		case runes[i] == '[':
			end := strings.IndexRune(string(runes[i+1:]), ']')
			if end <= 0 {
				sb.WriteString(`\[`)
				continue
			}
			class := []rune(string(runes[i+1:])[:end])
			if class[0] == '!' {
				class[0] = '^'
			}
			sb.WriteString("[" + strings.ReplaceAll(string(class), `\`, `\\`) + "]")
			i += len(class) + 1
		default:
			sb.WriteString(regexp2.Escape(string(runes[i])))
		}
	}
	return sb.String()
}

// Match reports whether path, relative to the root, is ignored. A path
// under an ignored directory is ignored too.
func (m *Matcher) Match(p string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	p = strings.TrimPrefix(filepath.ToSlash(p), "./")
	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchPath(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return m.matchPath(p, isDir)
}

// matchPath applies the patterns in order; the last one matching decides.
func (m *Matcher) matchPath(p string, isDir bool) bool {
	ignored := false
	for _, pat := range m.patterns {
		if pat.matches(p, isDir) {
			ignored = !pat.negation
		}
	}
	return ignored
}

func (p *pattern) matches(path string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	ok, err := p.re.MatchString(path)
	return err == nil && ok
}
