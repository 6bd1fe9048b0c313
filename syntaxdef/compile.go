package syntaxdef

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/roveo/topo-syntax/highlight"
	"github.com/roveo/topo-syntax/outline"
	"github.com/roveo/topo-syntax/syntax"
)

// Language is a regex language compiled from a definition
type Language struct {
	name        string
	exts        []string
	highlighter *highlight.Parser
	outliner    *outline.Parser
}

func (l *Language) Name() string                   { return l.name }
func (l *Language) Extensions() []string           { return l.exts }
func (l *Language) Highlighter() *highlight.Parser { return l.highlighter }
func (l *Language) Outliner() *outline.Parser      { return l.outliner }

// Compile builds the highlight and outline parsers of a definition. Rules
// whose patterns do not compile are logged and skipped; structural problems
// fail with ErrInvalidDefinition.
func (d *Definition) Compile() (*Language, error) {
	rule, err := highlight.ParseEscapeRule(d.Escape)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, d.Name, err)
	}

	extractors, err := d.extractors(rule)
	if err != nil {
		return nil, err
	}
	nestables, err := d.nestables()
	if err != nil {
		return nil, err
	}
	rules, err := d.outlineRules()
	if err != nil {
		return nil, err
	}

	return &Language{
		name:        d.Name,
		exts:        d.Extensions,
		highlighter: highlight.NewParser(extractors, nestables, rule),
		outliner:    outline.NewParser(rules),
	}, nil
}

func (d *Definition) extractors(rule highlight.EscapeRule) (map[syntax.Category][]highlight.Extractor, error) {
	out := make(map[syntax.Category][]highlight.Extractor, len(d.Highlights))
	for name, rules := range d.Highlights {
		category, ok := syntax.ParseCategory(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown category %q", ErrInvalidDefinition, d.Name, name)
		}

		add := func(e highlight.Extractor, err error, what string) {
			if err != nil {
				log.Warn().Err(err).Str("language", d.Name).Str("category", name).Str("rule", what).Msg("skipping rule")
				return
			}
			out[category] = append(out[category], e)
		}

		if len(rules.Words) > 0 {
			e, err := highlight.NewWordsExtractor(rules.Words, d.IgnoreCase)
			add(e, err, "words")
		}
		if len(rules.IgnoreCaseWords) > 0 {
			e, err := highlight.NewWordsExtractor(rules.IgnoreCaseWords, true)
			add(e, err, "ignore_case_words")
		}
		for _, re := range rules.Regex {
			e, err := highlight.NewRegexExtractor(re.Pattern, d.ignoreCase(re.IgnoreCase))
			add(e, err, re.Pattern)
		}
		for _, r := range rules.Ranges {
			ignoreCase := d.ignoreCase(r.IgnoreCase)
			if r.Regex {
				e, err := highlight.NewBeginEndRegexExtractor(r.Begin, r.End, ignoreCase, r.Multiline)
				add(e, err, r.Begin)
				continue
			}
			e, err := highlight.NewBeginEndStringExtractor(r.Begin, r.End, ignoreCase, r.Multiline, rule)
			add(e, err, r.Begin)
		}
	}
	return out, nil
}

// ignoreCase resolves a rule's own setting against the definition's.
func (d *Definition) ignoreCase(rule *bool) bool {
	if rule != nil {
		return *rule
	}
	return d.IgnoreCase
}

func (d *Definition) nestables() (map[highlight.NestableToken]syntax.Category, error) {
	out := make(map[highlight.NestableToken]syntax.Category)

	if d.Comment.Inline != "" {
		out[highlight.Inline(d.Comment.Inline, false)] = syntax.Comments
	}
	switch {
	case d.Comment.BlockBegin != "" && d.Comment.BlockEnd != "":
		out[highlight.Pair(d.Comment.BlockBegin, d.Comment.BlockEnd, true)] = syntax.Comments
	case d.Comment.BlockBegin != "" || d.Comment.BlockEnd != "":
		return nil, fmt.Errorf("%w: %s: block comments need both delimiters", ErrInvalidDefinition, d.Name)
	}

	for _, n := range d.Nestables {
		category, ok := syntax.ParseCategory(n.Category)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown category %q", ErrInvalidDefinition, d.Name, n.Category)
		}
		switch {
		case n.Inline != "":
			out[highlight.Inline(n.Inline, n.LeadingOnly)] = category
		case n.Begin != "" && n.End != "":
			out[highlight.Pair(n.Begin, n.End, n.Multiline)] = category
		default:
			return nil, fmt.Errorf("%w: %s: nestable token needs inline or begin and end", ErrInvalidDefinition, d.Name)
		}
	}
	return out, nil
}

func (d *Definition) outlineRules() ([]outline.Rule, error) {
	rules := make([]outline.Rule, 0, len(d.Outline))
	for _, o := range d.Outline {
		kind, ok := syntax.ParseOutlineKind(o.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown outline kind %q", ErrInvalidDefinition, d.Name, o.Kind)
		}
		rules = append(rules, outline.Rule{
			Pattern:    o.Pattern,
			Template:   o.Template,
			IgnoreCase: o.IgnoreCase || d.IgnoreCase,
			Kind:       kind,
		})
	}
	return rules, nil
}
