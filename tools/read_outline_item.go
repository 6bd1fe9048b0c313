package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadOutlineItemInput is the input schema for the read_outline_item tool
type ReadOutlineItemInput struct {
	File     string `json:"file" jsonschema_description:"File path, relative to the working directory or absolute."`
	Name     string `json:"name" jsonschema_description:"Name of the outline item (function, type, class, heading, section...) or its full title as printed by the outline tool."`
	Language string `json:"language,omitempty" jsonschema_description:"Language name to use instead of the one the extension maps to."`
}

// ReadOutlineItemTool creates the read_outline_item MCP tool
func ReadOutlineItemTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_outline_item",
		Description: "Get the source text of one outline item (function, type, class, heading, section, etc.) by name and file path. Returns the lines the item spans with line numbers.",
	}
}

// ReadOutlineItemHandler handles the read_outline_item tool invocation
func ReadOutlineItemHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, ReadOutlineItemInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReadOutlineItemInput) (*mcp.CallToolResult, any, error) {
		output, err := RunReadOutlineItem(ctx, cfg, input)
		if err != nil {
			return nil, nil, err
		}
		return textResult(output), nil, nil
	}
}

// RunReadOutlineItem finds the item and formats its source lines.
func RunReadOutlineItem(ctx context.Context, cfg *Config, input ReadOutlineItemInput) (string, error) {
	if input.File == "" {
		return "", fmt.Errorf("file path is required")
	}
	if input.Name == "" {
		return "", fmt.Errorf("item name is required")
	}
	path, err := absPath(input.File)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", input.File)
	}

	ctx, cancel := cfg.WithParseTimeout(ctx)
	defer cancel()
	entry, lines, err := FindItem(ctx, path, input.Language, input.Name)
	if err != nil {
		return "", err
	}

	startLine := entry.StartLine + 1
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s %s in %s [%d-%d]\n\n", entry.Kind, entry.Title, input.File, startLine, entry.EndLine+1)
	sb.WriteString("```\n")
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d | %s\n", startLine+i, line)
	}
	sb.WriteString("```\n")
	return sb.String(), nil
}
