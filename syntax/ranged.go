package syntax

import "sort"

// Ranged pairs a span of text with an arbitrary value.
type Ranged[T any] struct {
	Span  Span
	Value T
}

// NewRanged returns a Ranged value for the given span.
func NewRanged[T any](span Span, value T) Ranged[T] {
	return Ranged[T]{Span: span, Value: value}
}

// SortRanged sorts items by their lower bound, keeping the relative order of
// items that start at the same location.
func SortRanged[T any](items []Ranged[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Span.Lower < items[j].Span.Lower
	})
}
