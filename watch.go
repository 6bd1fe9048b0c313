package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roveo/topo-syntax/document"
)

func runWatch(cmd *cobra.Command, path, lang string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	doc, err := document.Open(lang, path, string(data))
	if err != nil {
		return err
	}
	defer doc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	initial, cancel := toolsCfg.WithParseTimeout(ctx)
	result, err := doc.HighlightAll(initial)
	cancel()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s (%s): %d highlights\n", path, doc.Language().Name(), len(result.Highlights))

	w, err := document.NewWatcher(path, doc)
	if err != nil {
		return err
	}
	return w.Run(ctx, func(c document.Change) {
		edits := make([]string, len(c.Edits))
		for i, e := range c.Edits {
			edits[i] = e.String()
		}
		fmt.Fprintf(out, "edits %s updated %s: %d highlights\n",
			strings.Join(edits, " "), c.Result.UpdateRange, len(c.Result.Highlights))
	})
}
