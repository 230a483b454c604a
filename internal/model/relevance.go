package model

import (
	"sort"
	"strings"
)

// Relevance scores for search matches. Higher wins.
const (
	ScoreExact     = 100
	ScorePrefix    = 75
	ScoreSubstring = 50
)

// MatchesQuery reports whether the item's name, description or slug contains
// the query, case-insensitively. The query is expected to be trimmed.
func (c *CatalogItem) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Description), q) ||
		strings.Contains(strings.ToLower(c.Slug), q)
}

// RelevanceScore ranks how well the item matches the query: an exact match
// on name or slug scores 100, a prefix match 75, and any other substring
// match 50.
func (c *CatalogItem) RelevanceScore(query string) int {
	q := strings.ToLower(query)
	name := strings.ToLower(c.Name)
	slug := strings.ToLower(c.Slug)

	if name == q || slug == q {
		return ScoreExact
	}
	if strings.HasPrefix(name, q) || strings.HasPrefix(slug, q) {
		return ScorePrefix
	}
	return ScoreSubstring
}

// RankedItem pairs a catalog item with its relevance score.
type RankedItem struct {
	Item  CatalogItem
	Score int
}

// RankedItems is a slice of ranked matches that supports relevance ordering.
type RankedItems []RankedItem

// Len implements sort.Interface.
func (r RankedItems) Len() int { return len(r) }

// Swap implements sort.Interface.
func (r RankedItems) Swap(i, j int) { r[i], r[j] = r[j], r[i] }

// Less implements sort.Interface - higher scores come first, ties broken by
// name. Name comparison here is byte-wise; Sort applies the collator.
func (r RankedItems) Less(i, j int) bool {
	if r[i].Score != r[j].Score {
		return r[i].Score > r[j].Score
	}
	return r[i].Item.Name < r[j].Item.Name
}

// Sort orders the matches by descending score, ties broken by locale-aware
// name comparison.
func (r RankedItems) Sort() {
	c := NewCollator()
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return c.CompareString(r[i].Item.Name, r[j].Item.Name) < 0
	})
}

// Page returns the slice of matches at [offset, offset+limit). Callers must
// sort first; paging a ranked set before sorting breaks relevance ordering
// across pages.
func (r RankedItems) Page(limit, offset int) RankedItems {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(r) {
		return RankedItems{}
	}
	end := offset + limit
	if limit <= 0 || end > len(r) {
		end = len(r)
	}
	out := make(RankedItems, end-offset)
	copy(out, r[offset:end])
	return out
}
