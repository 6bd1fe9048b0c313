package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roveo/topo-syntax/syntax"
)

// maxSnippet bounds the text shown for one highlight.
const maxSnippet = 40

// HighlightInput is the input schema for the highlight tool
type HighlightInput struct {
	File      string `json:"file" jsonschema_description:"File path, relative to the working directory or absolute."`
	Language  string `json:"language,omitempty" jsonschema_description:"Language name to use instead of the one the extension maps to."`
	StartLine int    `json:"start_line,omitempty" jsonschema_description:"First line to highlight (1-based). Defaults to the first line."`
	EndLine   int    `json:"end_line,omitempty" jsonschema_description:"Last line to highlight (1-based, inclusive). Defaults to the last line."`
}

// HighlightTool creates the highlight MCP tool
func HighlightTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "highlight",
		Description: "Classify the text of a file, or of a range of its lines, into syntax categories (keywords, commands, types, attributes, variables, values, numbers, strings, characters, comments). Returns one non-overlapping range per line of output with its line:column bounds, category and text.",
	}
}

// HighlightHandler handles the highlight tool invocation
func HighlightHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, HighlightInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HighlightInput) (*mcp.CallToolResult, any, error) {
		output, err := RunHighlight(ctx, cfg, input)
		if err != nil {
			return nil, nil, err
		}
		return textResult(output), nil, nil
	}
}

// RunHighlight highlights the requested lines of a file and formats the
// result.
func RunHighlight(ctx context.Context, cfg *Config, input HighlightInput) (string, error) {
	if input.File == "" {
		return "", fmt.Errorf("file path is required")
	}
	path, err := absPath(input.File)
	if err != nil {
		return "", err
	}
	src, err := Open(path, input.Language)
	if err != nil {
		return "", err
	}
	defer src.Close()

	r, err := src.LineSpan(input.StartLine, input.EndLine)
	if err != nil {
		return "", err
	}

	ctx, cancel := cfg.WithParseTimeout(ctx)
	defer cancel()
	result, err := src.Doc.Highlight(ctx, r)
	if err != nil {
		return "", fmt.Errorf("failed to highlight %s: %w", input.File, err)
	}

	var visible []syntax.Highlight
	for _, h := range result.Highlights {
		if h.Span.Overlaps(r) {
			visible = append(visible, h)
		}
	}
	return FormatHighlights(src, input.File, visible, cfg.lineLimit()), nil
}

// FormatHighlights renders one highlight per line as
// "line:col-line:col category text", truncated to limit lines.
func FormatHighlights(src *Source, name string, highlights []syntax.Highlight, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s) %d highlights\n", name, src.Doc.Language().Name(), len(highlights))

	runes := []rune(src.Text)
	for i, h := range highlights {
		if limit > 0 && i+1 >= limit {
			fmt.Fprintf(&sb, "... %d more highlights\n", len(highlights)-i)
			break
		}
		fmt.Fprintf(&sb, "%s-%s %s %s\n",
			src.Position(h.Span.Lower), src.Position(h.Span.Upper), h.Value, snippet(runes, h.Span))
	}
	return sb.String()
}

// snippet quotes the highlighted text, shortened to maxSnippet characters.
func snippet(runes []rune, s syntax.Span) string {
	s = s.Clamped(len(runes))
	text := runes[s.Lower:s.Upper]
	if len(text) > maxSnippet {
		return fmt.Sprintf("%q...", string(text[:maxSnippet]))
	}
	return fmt.Sprintf("%q", string(text))
}
