package syntaxdef

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	stdpath "path"

	"github.com/rs/zerolog/log"

	"github.com/roveo/topo-syntax/languages"
)

//go:embed builtin/*.yaml
var builtinDefinitions embed.FS

func init() {
	langs, err := Builtins()
	if err != nil {
		log.Error().Err(err).Msg("failed to load built-in syntax definitions")
		return
	}
	for _, lang := range langs {
		languages.Register(lang)
	}
}

// Builtins compiles the definitions shipped with the binary.
func Builtins() ([]*Language, error) {
	return LoadFS(builtinDefinitions, "builtin")
}

// LoadFS compiles every .yaml and .yml file below dir.
func LoadFS(fsys fs.FS, dir string) ([]*Language, error) {
	var langs []*Language

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := stdpath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		def, err := Parse(content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		lang, err := def.Compile()
		if err != nil {
			return fmt.Errorf("compile %s: %w", path, err)
		}
		langs = append(langs, lang)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan syntax definitions: %w", err)
	}

	return langs, nil
}

// LoadDirs compiles the definitions in each directory and registers them.
// Later definitions replace earlier ones with the same extension.
func LoadDirs(dirs []string) error {
	for _, dir := range dirs {
		langs, err := LoadFS(os.DirFS(dir), ".")
		if err != nil {
			return fmt.Errorf("load %s: %w", dir, err)
		}
		for _, lang := range langs {
			log.Debug().Str("language", lang.Name()).Str("dir", dir).Msg("registered syntax definition")
			languages.Register(lang)
		}
	}
	return nil
}
