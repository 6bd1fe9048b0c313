package languages

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]Language)
	byName   = make(map[string]Language)
)

// Register adds a language to the registry. Languages are registered from
// init functions and while loading syntax definitions at startup; the
// registry is only read afterwards.
func Register(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	for _, ext := range lang.Extensions() {
		registry[strings.ToLower(ext)] = lang
	}
	byName[lang.Name()] = lang
}

// GetLanguageForFile returns the Language for a file based on its extension.
// Returns nil if the file type is not supported.
func GetLanguageForFile(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	mu.RLock()
	defer mu.RUnlock()
	return registry[ext]
}

// ByName returns the language registered under name.
func ByName(name string) (Language, error) {
	mu.RLock()
	defer mu.RUnlock()
	lang, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownLanguage)
	}
	return lang, nil
}

// Resolve returns the language named lang, or the language for path when
// lang is empty.
func Resolve(lang, path string) (Language, error) {
	if lang != "" {
		return ByName(lang)
	}
	if l := GetLanguageForFile(path); l != nil {
		return l, nil
	}
	return nil, fmt.Errorf("no language for %q: %w", path, ErrUnknownLanguage)
}

// LookupGrammar is the default Provider. It returns registered languages
// backed by a grammar.
func LookupGrammar(name string) (GrammarLanguage, bool) {
	mu.RLock()
	defer mu.RUnlock()
	g, ok := byName[name].(GrammarLanguage)
	return g, ok
}

// SupportedExtensions returns all registered file extensions
func SupportedExtensions() []string {
	mu.RLock()
	defer mu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// RegisteredLanguages returns the names of all registered languages
func RegisteredLanguages() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
