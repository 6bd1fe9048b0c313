package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/roveo/topo-syntax/languages"
	"github.com/roveo/topo-syntax/tools"
)

func runHighlight(cmd *cobra.Command, input tools.HighlightInput) error {
	output, err := tools.RunHighlight(cmd.Context(), toolsCfg, input)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

func runOutline(cmd *cobra.Command, input tools.OutlineInput) error {
	output, err := tools.RunOutline(cmd.Context(), toolsCfg, input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func newMCPServer(cfg *tools.Config) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "topo",
		Version: version,
	}, nil)

	mcp.AddTool(s, tools.HighlightTool(), tools.HighlightHandler(cfg))
	mcp.AddTool(s, tools.OutlineTool(), tools.OutlineHandler(cfg))
	mcp.AddTool(s, tools.ReadOutlineItemTool(), tools.ReadOutlineItemHandler(cfg))
	return s
}

func runMCPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Info().Strs("languages", languages.RegisteredLanguages()).Msg("starting MCP server")
	return newMCPServer(toolsCfg).Run(ctx, &mcp.StdioTransport{})
}
