package catalog

import (
	"testing"

	"github.com/plazamkt/storefront-backend/internal/model"
)

func ptr(v uint64) *uint64 { return &v }

func TestBuildTreeNesting(t *testing.T) {
	cats := []model.Category{
		{ID: 3, Slug: "phones", Name: "Phones", ParentID: ptr(1), SortOrder: 1},
		{ID: 1, Slug: "electronics", Name: "Electronics", SortOrder: 0},
		{ID: 2, Slug: "home", Name: "Home", SortOrder: 1},
		{ID: 4, Slug: "laptops", Name: "Laptops", ParentID: ptr(1), SortOrder: 0},
		{ID: 5, Slug: "chargers", Name: "Chargers", ParentID: ptr(3), SortOrder: 0},
	}
	roots := BuildTree(cats)
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if roots[0].Slug != "electronics" || roots[1].Slug != "home" {
		t.Fatalf("root order wrong: %s, %s", roots[0].Slug, roots[1].Slug)
	}
	el := roots[0]
	if len(el.Children) != 2 || el.Children[0].Slug != "laptops" || el.Children[1].Slug != "phones" {
		t.Fatalf("electronics children wrong: %+v", el.Children)
	}
	if len(el.Children[1].Children) != 1 || el.Children[1].Children[0].Slug != "chargers" {
		t.Fatalf("phones children wrong: %+v", el.Children[1].Children)
	}
}

func TestBuildTreeSortOrderTies(t *testing.T) {
	cats := []model.Category{
		{ID: 1, Slug: "b", Name: "Bravo", SortOrder: 0},
		{ID: 2, Slug: "a", Name: "Alpha", SortOrder: 0},
		{ID: 3, Slug: "z", Name: "Zulu", SortOrder: -1},
	}
	roots := BuildTree(cats)
	got := []string{roots[0].Slug, roots[1].Slug, roots[2].Slug}
	want := []string{"z", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want=%v", got, want)
		}
	}
}

func TestBuildTreeOrphanPromoted(t *testing.T) {
	cats := []model.Category{
		{ID: 1, Slug: "stray", Name: "Stray", ParentID: ptr(99)},
	}
	roots := BuildTree(cats)
	if len(roots) != 1 || roots[0].Slug != "stray" {
		t.Fatalf("orphan must surface at root, got %+v", roots)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	if roots := BuildTree(nil); len(roots) != 0 {
		t.Fatalf("got %d roots, want 0", len(roots))
	}
}
