package source

import (
	"sort"
	"strings"
)

// NameMatchesQuery reports whether a search-result name is an exact match
// for the query, case-insensitively and treating hyphens and spaces as
// interchangeable ("world-edit" matches "World Edit").
func NameMatchesQuery(name, query string) bool {
	n, q := strings.ToLower(name), strings.ToLower(query)
	if n == q {
		return true
	}
	swap := strings.NewReplacer("-", " ")
	if swap.Replace(n) == q || n == swap.Replace(q) {
		return true
	}
	return false
}

// Rank orders search results so exact-name matches for query come first,
// breaking ties alphabetically by name. Use this when the catalog's own
// result order carries no meaning.
func Rank[T any](results []T, query string, name func(T) string) {
	sort.SliceStable(results, func(i, j int) bool {
		mi, mj := NameMatchesQuery(name(results[i]), query), NameMatchesQuery(name(results[j]), query)
		if mi != mj {
			return mi
		}
		return strings.ToLower(name(results[i])) < strings.ToLower(name(results[j]))
	})
}

// RankStable orders search results so exact-name matches come first but
// otherwise preserves the catalog's order. Use this when upstream order
// already encodes relevance.
func RankStable[T any](results []T, query string, name func(T) string) {
	sort.SliceStable(results, func(i, j int) bool {
		mi, mj := NameMatchesQuery(name(results[i]), query), NameMatchesQuery(name(results[j]), query)
		return mi && !mj
	})
}

// ParseOwnerName splits an "owner/name" identifier. Both parts must be
// non-empty and name must not contain further slashes.
func ParseOwnerName(id string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(id, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}
