package document

import (
	"fmt"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/roveo/topo-syntax/syntax"
)

// Edit is an edit notification. Range covers the inserted text after the
// edit and Delta is the change in length, both in characters.
type Edit struct {
	Range    syntax.Span
	Delta    int
	Inserted string
}

func (e Edit) String() string {
	return fmt.Sprintf("edit %s delta %d", e.Range, e.Delta)
}

// EditsBetween returns the edits that turn before into after. Each edit is
// expressed against the text produced by the edits before it, so they must be
// applied in order.
func EditsBetween(before, after string) []Edit {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupEfficiency(diffs)

	var (
		edits    []Edit
		pos      int
		deleted  int
		inserted string
		pending  bool
	)
	flush := func() {
		if !pending {
			return
		}
		n := utf8.RuneCountInString(inserted)
		edits = append(edits, Edit{
			Range:    syntax.NewSpan(pos, pos+n),
			Delta:    n - deleted,
			Inserted: inserted,
		})
		pos += n
		deleted, inserted, pending = 0, "", false
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			pos += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += utf8.RuneCountInString(d.Text)
			pending = true
		case diffmatchpatch.DiffInsert:
			inserted += d.Text
			pending = true
		}
	}
	flush()

	return edits
}

// Apply applies edits to text the way a document would.
func Apply(text string, edits []Edit) (string, error) {
	runes := []rune(text)
	for _, e := range edits {
		oldUpper := e.Range.Upper - e.Delta
		if e.Range.Lower < 0 || oldUpper < e.Range.Lower || oldUpper > len(runes) ||
			utf8.RuneCountInString(e.Inserted) != e.Range.Len() {
			return "", fmt.Errorf("%s on %d characters: %w", e, len(runes), syntax.ErrInvalidRange)
		}
		next := make([]rune, 0, len(runes)+e.Delta)
		next = append(next, runes[:e.Range.Lower]...)
		next = append(next, []rune(e.Inserted)...)
		next = append(next, runes[oldUpper:]...)
		runes = next
	}
	return string(runes), nil
}
