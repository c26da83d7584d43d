// Package catalog turns the flat category table into the nested tree the
// storefront navigation renders.
package catalog

import (
	"sort"

	"github.com/plazamkt/storefront-backend/internal/model"
)

type Node struct {
	ID       uint64  `json:"id"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
}

// BuildTree nests a flat category list by parent id. Siblings are ordered
// by sort_order, ties broken by name. Categories whose parent is missing
// from the input are promoted to the root rather than dropped.
func BuildTree(categories []model.Category) []*Node {
	sorted := make([]model.Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].Name < sorted[j].Name
	})

	nodes := make(map[uint64]*Node, len(sorted))
	for _, c := range sorted {
		nodes[c.ID] = &Node{ID: c.ID, Slug: c.Slug, Name: c.Name, Children: []*Node{}}
	}

	roots := make([]*Node, 0, len(sorted))
	for _, c := range sorted {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && *c.ParentID != c.ID {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
