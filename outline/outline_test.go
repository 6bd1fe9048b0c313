package outline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roveo/topo-syntax/highlight"
	"github.com/roveo/topo-syntax/syntax"
)

func items(t *testing.T, rule Rule, text string) []syntax.OutlineItem {
	t.Helper()
	e, err := NewExtractor(rule)
	require.NoError(t, err)
	runes := []rune(text)
	got, err := e.Items(context.Background(), runes, syntax.NewSpan(0, len(runes)))
	require.NoError(t, err)
	return got
}

func TestHeadingsWithTemplate(t *testing.T) {
	rule := Rule{Pattern: `^[ \t]*(#{1,6})[ \t]+(.+)$`, Template: "$2", Kind: syntax.KindHeading}
	got := items(t, rule, "# Title\ntext\n  ## Sub   section\n")

	require.Len(t, got, 2)
	assert.Equal(t, syntax.OutlineItem{
		Title:  "Title",
		Span:   syntax.NewSpan(0, 7),
		Kind:   syntax.KindHeading,
		Indent: syntax.IndentString(""),
	}, got[0])
	assert.Equal(t, "Sub section", got[1].Title)
	assert.Equal(t, syntax.NewSpan(13, 31), got[1].Span)
	assert.Equal(t, "  ", got[1].Indent.Render("\t"))
}

func TestEmptyTemplateUsesWholeMatch(t *testing.T) {
	got := items(t, Rule{Pattern: `func \w+`, Kind: syntax.KindFunction}, "func a\n\tfunc b")
	require.Len(t, got, 2)
	assert.Equal(t, "func a", got[0].Title)
	assert.Equal(t, "func b", got[1].Title)
	assert.Equal(t, "\t", got[1].Indent.Literal)
}

func TestSeparatorItemsHaveNoTitle(t *testing.T) {
	got := items(t, Rule{Pattern: `^---$`, Template: "ignored", Kind: syntax.KindSeparator}, "a\n---\nb")
	require.Len(t, got, 1)
	assert.True(t, got[0].IsSeparator())
	assert.Empty(t, got[0].Title)
	assert.Equal(t, syntax.NewSpan(2, 5), got[0].Span)
}

func TestBlankRuleProducesNoItems(t *testing.T) {
	got := items(t, Rule{Pattern: `^[ \t]*$`, Kind: syntax.KindValue}, "\n   \n\t\n  \t  ")
	assert.Empty(t, got)
}

func TestTemplateSubstitution(t *testing.T) {
	got := items(t, Rule{Pattern: `(\w+)(?:=(\d+))?`, Template: `\$$1:$2`}, "a=1 b")
	require.Len(t, got, 2)
	assert.Equal(t, "$a:1", got[0].Title)
	assert.Equal(t, "$b:", got[1].Title)
}

func TestTitleWhitespaceCollapses(t *testing.T) {
	got := items(t, Rule{Pattern: `(?s)item(.*)`, Template: "x \t $1"}, "item  one\n\ttwo  ")
	require.Len(t, got, 1)
	assert.Equal(t, "x one two", got[0].Title)
}

func TestParserMergesRulesInDocumentOrder(t *testing.T) {
	p := NewParser([]Rule{
		{Pattern: `^## (.+)$`, Template: "$1", Kind: syntax.KindHeading},
		{Pattern: `(unclosed`, Kind: syntax.KindValue},
		{Pattern: `^# (.+)$`, Template: "$1", Kind: syntax.KindHeading},
	})
	assert.Equal(t, 2, p.Len())

	got, err := p.Parse(context.Background(), "# A\n## B\n# C")
	require.NoError(t, err)
	titles := make([]string, len(got))
	for i, item := range got {
		titles[i] = item.Title
	}
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}

func TestOutlineCancellation(t *testing.T) {
	p := NewParser([]Rule{{Pattern: `^# (.+)$`, Template: "$1", Kind: syntax.KindHeading}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := p.Parse(ctx, strings.Repeat("# heading\n", 5000))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestOutlineInvalidRange(t *testing.T) {
	p := NewParser([]Rule{{Pattern: `x`}})
	_, err := p.ParseRunes(context.Background(), []rune("x"), syntax.NewSpan(0, 3))
	require.ErrorIs(t, err, syntax.ErrInvalidRange)
}

func TestOutlineCancelledWhileMatching(t *testing.T) {
	p := NewParser([]Rule{{Pattern: `^(a+)+$`, Kind: syntax.KindHeading}})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	got, err := p.Parse(ctx, strings.Repeat("a", 40)+"b")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, got)
	assert.Less(t, time.Since(start), highlight.MatchTimeout)
}

func TestOutlineRangeStartsMidLine(t *testing.T) {
	e, err := NewExtractor(Rule{Pattern: `^# (.+)$`, Template: "$1", Kind: syntax.KindHeading})
	require.NoError(t, err)
	text := []rune("x # no\n# yes")

	got, err := e.Items(context.Background(), text, syntax.NewSpan(2, len(text)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "yes", got[0].Title)
	assert.Equal(t, syntax.NewSpan(7, 12), got[0].Span)
}
