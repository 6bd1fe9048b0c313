package syntax

import (
	"fmt"
	"strings"
)

// Category is a syntax highlighting class.
type Category int

const (
	Keywords Category = iota
	Commands
	Types
	Attributes
	Variables
	Values
	Numbers
	Strings
	Characters
	Comments
)

var categoryNames = [...]string{
	Keywords:   "keywords",
	Commands:   "commands",
	Types:      "types",
	Attributes: "attributes",
	Variables:  "variables",
	Values:     "values",
	Numbers:    "numbers",
	Strings:    "strings",
	Characters: "characters",
	Comments:   "comments",
}

// precedence lists the categories from the one that wins overlaps to the one
// that loses them.
var precedence = [...]Category{
	Comments,
	Strings,
	Characters,
	Numbers,
	Keywords,
	Commands,
	Types,
	Attributes,
	Values,
	Variables,
}

var precedenceRank = func() [len(categoryNames)]int {
	var rank [len(categoryNames)]int
	for i, c := range precedence {
		rank[c] = len(precedence) - i
	}
	return rank
}()

// Categories returns all categories in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// CategoriesByPrecedence returns all categories, the strongest first.
func CategoriesByPrecedence() []Category {
	out := make([]Category, len(precedence))
	copy(out, precedence[:])
	return out
}

// Precedence returns the overlap rank of c. A higher rank wins.
func (c Category) Precedence() int {
	if !c.Valid() {
		return 0
	}
	return precedenceRank[c]
}

func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryNames)
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a category by its name.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// CategoryForCapture resolves a query capture name such as "types.builtin" by
// its root component. Names whose root is not a known category are rejected.
func CategoryForCapture(capture string) (Category, bool) {
	root, _, _ := strings.Cut(capture, ".")
	return ParseCategory(root)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", string(text))
	}
	*c = parsed
	return nil
}

// Highlight is a span tagged with a syntax category.
type Highlight = Ranged[Category]
