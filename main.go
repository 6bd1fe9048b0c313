package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roveo/topo-syntax/config"
	"github.com/roveo/topo-syntax/highlight"
	"github.com/roveo/topo-syntax/syntaxdef"
	"github.com/roveo/topo-syntax/tools"
)

var version = "dev"

var (
	cfgFile  string
	v        = config.New()
	cfg      config.Config
	toolsCfg *tools.Config
)

var rootCmd = &cobra.Command{
	Use:   "topo",
	Short: "Syntax highlighting and outlines for source files",
	Long: `topo classifies source text into syntax categories and extracts structural
outlines. Grammar-backed languages (Go, Python, Rust, TypeScript/JavaScript, HTML,
CSS) are parsed incrementally; simple languages (Markdown, INI, shell and any
YAML syntax definition in the configured directories) use regex rules.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE",
	Short: "Print the highlights of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		start, _ := cmd.Flags().GetInt("start-line")
		end, _ := cmd.Flags().GetInt("end-line")
		return runHighlight(cmd, tools.HighlightInput{File: args[0], Language: lang, StartLine: start, EndLine: end})
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline [path]",
	Short: "Print the outline of a file or directory",
	Long: `Print the outline of a file, or of every supported file in a directory
with their line ranges. Directory output is pruned to the line limit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := tools.OutlineInput{Path: "."}
		if len(args) > 0 {
			input.Path = args[0]
		}
		input.Filter, _ = cmd.Flags().GetString("filter")
		input.Language, _ = cmd.Flags().GetString("lang")
		return runOutline(cmd, input)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-highlight a file whenever it is written",
	Long: `Keep FILE parsed and, on every write, print the derived edits, the range
that had to be re-validated and the number of highlights in it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		return runWatch(cmd, args[0], lang)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (communicates via stdio)",
	Long: `Run as an MCP server that communicates via stdio.
Exposes tools: highlight, outline, read_outline_item.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.topo.yaml or ~/.topo/config.yaml)")
	flags.StringArray("skip", nil,
		"Path prefixes to skip in directory outlines (can be specified multiple times)")
	flags.Int("limit", tools.DefaultLineLimit,
		"Maximum lines in output (0 = default)")
	flags.StringArray("syntax-dir", nil,
		"Directory with YAML syntax definitions (can be specified multiple times)")
	flags.Duration("parse-timeout", 5*time.Second,
		"Bound on each parse (0 = none)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json, console)")

	bindFlag(v, "skip", "skip")
	bindFlag(v, "limit", "limit")
	bindFlag(v, "syntax_dirs", "syntax-dir")
	bindFlag(v, "parse_timeout", "parse-timeout")
	bindFlag(v, "log.level", "log-level")
	bindFlag(v, "log.format", "log-format")

	for _, cmd := range []*cobra.Command{highlightCmd, outlineCmd, watchCmd} {
		cmd.Flags().StringP("lang", "l", "", "Language name instead of the one the extension maps to")
	}
	highlightCmd.Flags().Int("start-line", 0, "First line to highlight (1-based)")
	highlightCmd.Flags().Int("end-line", 0, "Last line to highlight (1-based, inclusive)")
	outlineCmd.Flags().StringP("filter", "f", "",
		"Only show files matching this path prefix (file or directory)")

	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
}

func bindFlag(v *viper.Viper, key, flag string) {
	_ = v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// setup loads the configuration and applies it before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := config.SetupLogging(cfg.Log, os.Stderr); err != nil {
		return err
	}

	highlight.ConfigurePatternCache(cfg.PatternCache.TTL)
	if err := syntaxdef.LoadDirs(cfg.SyntaxDirs); err != nil {
		return fmt.Errorf("failed to load syntax definitions: %w", err)
	}

	toolsCfg = &tools.Config{
		SkipPatterns: cfg.Skip,
		LineLimit:    cfg.Limit,
		ParseTimeout: cfg.ParseTimeout,
	}
	log.Debug().Str("config", v.ConfigFileUsed()).Strs("syntax_dirs", cfg.SyntaxDirs).Msg("configured")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
