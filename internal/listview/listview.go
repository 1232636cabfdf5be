// Package listview implements the in-memory search/filter/sort pipeline that
// backs the admin console list screens. The source slice is the single
// authoritative cache of the last fetch; View never mutates it.
package listview

import (
	"sort"
	"strings"
	"time"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

// Query describes one rendered view over a collection: free-text search
// OR-combined across the entity's searchable fields, independent boolean
// filters AND-combined, and at most one active sort key.
type Query[T any] struct {
	Search       string
	SearchFields []func(T) string
	Filters      []func(T) bool
	SortBy       func(a, b T) int
	SortOrder    Order
}

// View returns a new ordered subsequence of items matching the query.
// Calling it twice with the same arguments over an unchanged collection
// yields the same result.
func View[T any](items []T, q Query[T]) []T {
	out := make([]T, 0, len(items))

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, it := range items {
		if needle != "" && !matchesSearch(it, needle, q.SearchFields) {
			continue
		}
		if !matchesFilters(it, q.Filters) {
			continue
		}
		out = append(out, it)
	}

	if q.SortBy != nil {
		sort.SliceStable(out, func(i, j int) bool {
			c := q.SortBy(out[i], out[j])
			if q.SortOrder == Descending {
				return c > 0
			}
			return c < 0
		})
	}
	return out
}

func matchesSearch[T any](it T, needle string, fields []func(T) string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f(it)), needle) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](it T, filters []func(T) bool) bool {
	for _, f := range filters {
		if !f(it) {
			return false
		}
	}
	return true
}

// ByString builds a case-folded string comparator from a field extractor.
// A missing value compares as the empty string.
func ByString[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// ByNumber builds a numeric comparator; missing values extract as zero.
func ByNumber[T any](field func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		x, y := field(a), field(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
}

// ByTime builds a timestamp comparator; missing values extract as the zero
// time and sort first ascending.
func ByTime[T any](field func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		x, y := field(a), field(b)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		default:
			return 0
		}
	}
}
