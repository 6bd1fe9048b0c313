package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OutlineInput is the input schema for the outline tool
type OutlineInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"File or directory to outline. Defaults to the current working directory."`
	Filter   string `json:"filter,omitempty" jsonschema_description:"For directories: only show files matching this path prefix (file or directory). Overrides the default skip patterns for matching files."`
	Language string `json:"language,omitempty" jsonschema_description:"For files: language name to use instead of the one the extension maps to (e.g. 'markdown', 'ini')."`
}

// OutlineTool creates the outline MCP tool
func OutlineTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "outline",
		Description: "Return the structural outline of a file or of every supported file in a directory: containers, functions, values, headings and marks with their line ranges, nested by containment.",
	}
}

// OutlineHandler handles the outline tool invocation
func OutlineHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, OutlineInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input OutlineInput) (*mcp.CallToolResult, any, error) {
		output, err := RunOutline(ctx, cfg, input)
		if err != nil {
			return nil, nil, err
		}
		return textResult(output), nil, nil
	}
}

// RunOutline outlines a file or a directory and formats the result.
func RunOutline(ctx context.Context, cfg *Config, input OutlineInput) (string, error) {
	path, err := absPath(input.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path not found: %s", input.Path)
	}

	ctx, cancel := cfg.WithParseTimeout(ctx)
	defer cancel()

	if !info.IsDir() {
		src, err := Open(path, input.Language)
		if err != nil {
			return "", err
		}
		defer src.Close()
		entries, err := src.Outline(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to outline %s: %w", input.Path, err)
		}
		if len(entries) == 0 {
			return "No outline items found.", nil
		}
		name := input.Path
		if name == "" {
			name = filepath.Base(path)
		}
		return FormatFileOutline(FileOutline{Path: name, Language: src.Doc.Language().Name(), Entries: entries}, cfg.lineLimit()), nil
	}

	files, err := OutlineDirectory(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to outline directory: %w", err)
	}
	var skip []string
	if cfg != nil {
		skip = cfg.SkipPatterns
	}
	output := FormatCodemap(files, FormatOptions{
		SkipPatterns: skip,
		Filter:       input.Filter,
		LineLimit:    cfg.lineLimit(),
	})
	if output == "" {
		output = "No outline items found in the specified directory."
	}
	return output, nil
}

// FormatOptions controls how the codemap is formatted
type FormatOptions struct {
	SkipPatterns []string // Path prefixes to skip by default
	Filter       string   // If set, only show files matching this prefix (overrides skip)
	LineLimit    int      // Maximum lines in output (0 = DefaultLineLimit)
}

// FormatEntry renders one entry indented by its nesting, with 1-based lines.
func FormatEntry(e Entry) string {
	indent := "  " + e.Indent.Render("  ")
	if e.IsSeparator() {
		return indent + "----"
	}
	if e.StartLine == e.EndLine {
		return fmt.Sprintf("%s%s [%d]", indent, e.Title, e.StartLine+1)
	}
	return fmt.Sprintf("%s%s [%d-%d]", indent, e.Title, e.StartLine+1, e.EndLine+1)
}

// FormatFileOutline renders a single file, truncated to limit lines.
func FormatFileOutline(file FileOutline, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n", file.Path, file.Language)
	for i, e := range file.Entries {
		if limit > 0 && i+1 >= limit {
			fmt.Fprintf(&sb, "  ... %d more items\n", len(file.Entries)-i)
			break
		}
		sb.WriteString(FormatEntry(e) + "\n")
	}
	return sb.String()
}

// FormatCodemap formats the outlines of many files, pruning whole
// directories and then files until the output fits the line limit.
func FormatCodemap(files []FileOutline, opts FormatOptions) string {
	limit := opts.LineLimit
	if limit == 0 {
		limit = DefaultLineLimit
	}

	tree := buildDirTree(files, opts)
	kept, prunedDirs := pruneToLimit(tree, limit)

	var sb strings.Builder
	if len(prunedDirs) > 0 {
		sb.WriteString("# Note: Output pruned to fit line limit\n")
		sb.WriteString("# Pruned directories: ")
		sb.WriteString(strings.Join(prunedDirs, ", "))
		sb.WriteString("\n\n")
	}

	if opts.Filter == "" {
		for _, file := range files {
			if isSkipped(file.Path, opts.SkipPatterns) {
				fmt.Fprintf(&sb, "## %s\n", file.Path)
				sb.WriteString("  (skipped by default - use filter parameter to outline this path explicitly)\n\n")
			}
		}
	}

	for _, file := range kept {
		fmt.Fprintf(&sb, "## %s\n", file.Path)
		for _, e := range file.Entries {
			sb.WriteString(FormatEntry(e) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// matchesFilter checks if a file path is the filter or lies under it.
func matchesFilter(filePath, filter string) bool {
	filter = strings.TrimPrefix(filter, "./")
	filePath = strings.TrimPrefix(filePath, "./")
	if filePath == filter {
		return true
	}
	return strings.HasPrefix(filePath, strings.TrimSuffix(filter, "/")+"/")
}

// isSkipped checks if a file path matches any skip pattern (prefix match)
func isSkipped(filePath string, patterns []string) bool {
	filePath = strings.TrimPrefix(filePath, "./")
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "./"), "/")
		if filePath == pattern || strings.HasPrefix(filePath, pattern+"/") {
			return true
		}
	}
	return false
}

// fileLineCount is header + entries + blank line, or 0 for an empty outline.
func fileLineCount(file FileOutline) int {
	if len(file.Entries) == 0 {
		return 0
	}
	return len(file.Entries) + 2
}

// dirNode is a directory of the pruning tree.
type dirNode struct {
	name     string
	path     string
	files    []FileOutline
	children map[string]*dirNode
	lines    int // output lines of the whole subtree
}

func newDirNode(name, path string) *dirNode {
	return &dirNode{name: name, path: path, children: make(map[string]*dirNode)}
}

// buildDirTree groups the visible, non-empty outlines by directory.
func buildDirTree(files []FileOutline, opts FormatOptions) *dirNode {
	root := newDirNode("", "")
	skippedLines := 0

	for _, file := range files {
		if opts.Filter != "" {
			if !matchesFilter(file.Path, opts.Filter) {
				continue
			}
		} else if isSkipped(file.Path, opts.SkipPatterns) {
			// header, notice and blank line
			skippedLines += 3
			continue
		}
		if len(file.Entries) == 0 {
			continue
		}

		node := root
		for _, part := range strings.Split(filepath.Dir(file.Path), string(filepath.Separator)) {
			if part == "." || part == "" {
				continue
			}
			child := node.children[part]
			if child == nil {
				child = newDirNode(part, filepath.Join(node.path, part))
				node.children[part] = child
			}
			node = child
		}
		node.files = append(node.files, file)
	}

	countLines(root)
	root.lines += skippedLines
	return root
}

// countLines recomputes the line totals of node's subtree.
func countLines(node *dirNode) int {
	total := 0
	for _, file := range node.files {
		total += fileLineCount(file)
	}
	for _, child := range node.children {
		total += countLines(child)
	}
	node.lines = total
	return total
}

// pruneToLimit drops the largest leaf directories, then the largest files,
// until the tree fits limit. It returns the kept files sorted by path and
// the pruned directories in pruning order.
func pruneToLimit(root *dirNode, limit int) ([]FileOutline, []string) {
	if limit <= 0 || root.lines <= limit {
		return collectFiles(root), nil
	}

	var prunedDirs []string
	total := root.lines
	for total > limit {
		leaf, parent := largestLeaf(root)
		if leaf == nil {
			break
		}
		delete(parent.children, leaf.name)
		prunedDirs = append(prunedDirs, leaf.path)
		total -= leaf.lines
	}
	countLines(root)

	if total > limit {
		pruneFiles(root, total, limit)
	}
	return collectFiles(root), prunedDirs
}

// largestLeaf finds the directory without subdirectories that produces the
// most lines, and its parent.
func largestLeaf(root *dirNode) (leaf, parent *dirNode) {
	most := 0
	var visit func(node, up *dirNode)
	visit = func(node, up *dirNode) {
		if len(node.children) == 0 {
			if node != root && node.lines > most {
				most, leaf, parent = node.lines, node, up
			}
			return
		}
		for _, child := range node.children {
			visit(child, node)
		}
	}
	visit(root, nil)
	return leaf, parent
}

// pruneFiles removes the largest files until total fits limit.
func pruneFiles(root *dirNode, total, limit int) {
	type fileRef struct {
		node  *dirNode
		index int
		lines int
	}
	var refs []fileRef
	var collect func(node *dirNode)
	collect = func(node *dirNode) {
		for i, file := range node.files {
			refs = append(refs, fileRef{node: node, index: i, lines: fileLineCount(file)})
		}
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(root)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].lines > refs[j].lines })

	drop := make(map[*dirNode]map[int]bool)
	for _, ref := range refs {
		if total <= limit {
			break
		}
		if drop[ref.node] == nil {
			drop[ref.node] = make(map[int]bool)
		}
		drop[ref.node][ref.index] = true
		total -= ref.lines
	}
	for node, indices := range drop {
		var kept []FileOutline
		for i, file := range node.files {
			if !indices[i] {
				kept = append(kept, file)
			}
		}
		node.files = kept
	}
	countLines(root)
}

// collectFiles returns every file of the tree sorted by path.
func collectFiles(root *dirNode) []FileOutline {
	var files []FileOutline
	var collect func(node *dirNode)
	collect = func(node *dirNode) {
		files = append(files, node.files...)
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(root)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// absPath makes p absolute against the working directory; "" is the
// working directory itself.
func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, p), nil
}
