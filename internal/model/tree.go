package model

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TreeNode is a catalog item with its resolved children, used to present a
// flat item list as a forest.
type TreeNode struct {
	CatalogItem
	Children []*TreeNode
}

// NewCollator returns the collator used for ordering catalog names. Sorting
// by display name is locale-aware so that accented names interleave the way
// users expect.
func NewCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// BuildTree assembles a flat, single-type, visibility-filtered item list into
// a sorted forest. A node whose parent is absent from the input (filtered out
// or not loaded) is promoted to a root rather than dropped, so every input
// item appears in the output exactly once. The input slice is not modified
// and the result is deterministic regardless of input order.
func BuildTree(items []CatalogItem) []*TreeNode {
	index := make(map[string]*TreeNode, len(items))
	nodes := make([]*TreeNode, 0, len(items))
	for _, item := range items {
		node := &TreeNode{CatalogItem: item}
		index[item.ID] = node
		nodes = append(nodes, node)
	}

	var roots []*TreeNode
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := index[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	c := NewCollator()
	sortNodes(c, roots)
	for _, node := range nodes {
		sortNodes(c, node.Children)
	}

	return roots
}

// sortNodes orders siblings by (sortOrder asc, name asc).
func sortNodes(c *collate.Collator, nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return c.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}

// SortItems orders a flat item slice by (sortOrder asc, name asc), the same
// ordering BuildTree applies to siblings. The slice is sorted in place.
func SortItems(items []CatalogItem) {
	c := NewCollator()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return c.CompareString(items[i].Name, items[j].Name) < 0
	})
}

// Flatten walks a forest depth-first and returns every node's item. It is
// the inverse of BuildTree with respect to membership.
func Flatten(roots []*TreeNode) []CatalogItem {
	var out []CatalogItem
	var walk func(*TreeNode)
	walk = func(n *TreeNode) {
		out = append(out, n.CatalogItem)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}
