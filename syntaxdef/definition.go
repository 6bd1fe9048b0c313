// Package syntaxdef loads regular expression syntax definitions from YAML and
// compiles them into highlight and outline parsers.
package syntaxdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition is returned for definitions that cannot describe a
// language, such as a missing name or an unknown category.
var ErrInvalidDefinition = errors.New("invalid syntax definition")

// Definition is the root structure of a syntax definition file
type Definition struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	// Escape is backslash (default), doubleDelimiter or none.
	Escape     string           `yaml:"escape"`
	IgnoreCase bool             `yaml:"ignore_case"`
	Comment    CommentDef       `yaml:"comment"`
	Highlights map[string]Rules `yaml:"highlights"`
	Nestables  []NestableDef    `yaml:"nestables"`
	Outline    []OutlineDef     `yaml:"outline"`
}

// CommentDef lists the comment delimiters of a language
type CommentDef struct {
	Inline     string `yaml:"inline"`
	BlockBegin string `yaml:"block_begin"`
	BlockEnd   string `yaml:"block_end"`
}

// Rules are the extractors of one category. Words follow the definition's
// ignore_case; IgnoreCaseWords always match regardless of case.
type Rules struct {
	Words           []string   `yaml:"words"`
	IgnoreCaseWords []string   `yaml:"ignore_case_words"`
	Regex           []RegexDef `yaml:"regex"`
	Ranges          []RangeDef `yaml:"ranges"`
}

// RegexDef is a single pattern, written either as a plain string or as a
// mapping with its own ignore_case.
type RegexDef struct {
	Pattern    string `yaml:"pattern"`
	IgnoreCase *bool  `yaml:"ignore_case"`
}

func (r *RegexDef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Pattern, r.IgnoreCase = value.Value, nil
		return nil
	}
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			switch key := value.Content[i]; key.Value {
			case "pattern", "ignore_case":
			default:
				return fmt.Errorf("line %d: field %s not found in regex rule", key.Line, key.Value)
			}
		}
	}
	type plain RegexDef
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Pattern == "" {
		return fmt.Errorf("line %d: regex rule has no pattern", value.Line)
	}
	*r = RegexDef(p)
	return nil
}

// RangeDef is a begin/end range. Begin and End are literals unless Regex is set.
type RangeDef struct {
	Begin      string `yaml:"begin"`
	End        string `yaml:"end"`
	Regex      bool   `yaml:"regex"`
	Multiline  bool   `yaml:"multiline"`
	IgnoreCase *bool  `yaml:"ignore_case"`
}

// NestableDef is a delimiter token scanned in document order. Either Inline or
// Begin and End are set.
type NestableDef struct {
	Category    string `yaml:"category"`
	Begin       string `yaml:"begin"`
	End         string `yaml:"end"`
	Inline      string `yaml:"inline"`
	Multiline   bool   `yaml:"multiline"`
	LeadingOnly bool   `yaml:"leading_only"`
}

// OutlineDef is one outline rule
type OutlineDef struct {
	Pattern    string `yaml:"pattern"`
	Template   string `yaml:"template"`
	Kind       string `yaml:"kind"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

// Decode reads a single definition. Unknown fields are rejected.
func Decode(r io.Reader) (*Definition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var def Definition
	if err := decoder.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	return &def, nil
}

// Parse decodes a definition from bytes.
func Parse(data []byte) (*Definition, error) {
	return Decode(bytes.NewReader(data))
}
