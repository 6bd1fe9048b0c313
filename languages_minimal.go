//go:build lang_minimal

package main

// Go and the syntax definitions only, for small builds.
import (
	_ "github.com/roveo/topo-syntax/languages/golang"
	_ "github.com/roveo/topo-syntax/syntaxdef"
)
