//go:build !lang_minimal

package main

// Register every bundled language.
import (
	_ "github.com/roveo/topo-syntax/languages/css"
	_ "github.com/roveo/topo-syntax/languages/golang"
	_ "github.com/roveo/topo-syntax/languages/html"
	_ "github.com/roveo/topo-syntax/languages/python"
	_ "github.com/roveo/topo-syntax/languages/rust"
	_ "github.com/roveo/topo-syntax/languages/typescript"
	_ "github.com/roveo/topo-syntax/syntaxdef"
)
