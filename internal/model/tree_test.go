package model

import (
	"math/rand"
	"testing"
)

func item(id string, parentID *string, name string, sortOrder int) CatalogItem {
	return CatalogItem{
		ID:          id,
		CatalogType: TypeTransactionCategory,
		Name:        name,
		Slug:        Slugify(name),
		ParentID:    parentID,
		SortOrder:   sortOrder,
		IsActive:    true,
	}
}

func TestBuildTree_Shape(t *testing.T) {
	items := []CatalogItem{
		item("food", nil, "Food", 0),
		item("groceries", strPtr("food"), "Groceries", 0),
		item("restaurants", strPtr("food"), "Restaurants", 1),
		item("housing", nil, "Housing", 1),
		item("rent", strPtr("housing"), "Rent", 0),
	}

	roots := BuildTree(items)

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "food" || roots[1].ID != "housing" {
		t.Errorf("unexpected root order: %s, %s", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("expected Food to have 2 children, got %d", len(roots[0].Children))
	}
	if roots[0].Children[0].ID != "groceries" {
		t.Errorf("expected groceries first under Food, got %s", roots[0].Children[0].ID)
	}
}

func TestBuildTree_PreservesAllItems(t *testing.T) {
	items := []CatalogItem{
		item("a", nil, "A root", 0),
		item("b", strPtr("a"), "B child", 0),
		item("c", strPtr("b"), "C grandchild", 0),
		item("orphan", strPtr("missing"), "Orphan", 0),
	}

	flattened := Flatten(BuildTree(items))
	if len(flattened) != len(items) {
		t.Fatalf("tree lost items: put in %d, got back %d", len(items), len(flattened))
	}

	seen := make(map[string]bool, len(flattened))
	for _, it := range flattened {
		if seen[it.ID] {
			t.Errorf("item %s duplicated", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestBuildTree_OrphanPromotedToRoot(t *testing.T) {
	// The parent was filtered out of the input (inactive or inaccessible);
	// its child must still be visible as a root.
	items := []CatalogItem{
		item("visible-root", nil, "Visible", 0),
		item("orphan", strPtr("filtered-out"), "Adrift", 1),
	}

	roots := BuildTree(items)
	if len(roots) != 2 {
		t.Fatalf("expected orphan promoted to root, got %d roots", len(roots))
	}
}

func TestBuildTree_SiblingOrder(t *testing.T) {
	items := []CatalogItem{
		item("r", nil, "Root", 0),
		item("c-zeta", strPtr("r"), "Zeta", 0),
		item("c-alpha", strPtr("r"), "alpha", 0),
		item("c-last", strPtr("r"), "Aardvark", 5),
	}

	roots := BuildTree(items)
	children := roots[0].Children
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}

	// Same sortOrder ties break on name, case-insensitively; higher
	// sortOrder always sorts after.
	want := []string{"c-alpha", "c-zeta", "c-last"}
	for i, id := range want {
		if children[i].ID != id {
			t.Errorf("child %d = %s, want %s", i, children[i].ID, id)
		}
	}
}

func TestBuildTree_DeterministicAcrossInputOrder(t *testing.T) {
	items := []CatalogItem{
		item("r1", nil, "Budget", 0),
		item("r2", nil, "Savings", 1),
		item("c1", strPtr("r1"), "Fixed", 0),
		item("c2", strPtr("r1"), "Variable", 1),
		item("g1", strPtr("c1"), "Rent", 0),
	}

	want := Flatten(BuildTree(items))

	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 10; n++ {
		shuffled := make([]CatalogItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Flatten(BuildTree(shuffled))
		if len(got) != len(want) {
			t.Fatalf("non-deterministic size: %d vs %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i].ID {
				t.Fatalf("non-deterministic order at %d: %s vs %s", i, got[i].ID, want[i].ID)
			}
		}
	}
}

func TestBuildTree_DoesNotMutateInput(t *testing.T) {
	items := []CatalogItem{
		item("b", nil, "B", 1),
		item("a", nil, "A", 0),
	}

	_ = BuildTree(items)

	if items[0].ID != "b" || items[1].ID != "a" {
		t.Error("BuildTree reordered its input slice")
	}
}

func TestSortItems(t *testing.T) {
	items := []CatalogItem{
		item("2", nil, "Beta", 1),
		item("1", nil, "Alpha", 1),
		item("0", nil, "Omega", 0),
	}

	SortItems(items)

	want := []string{"0", "1", "2"}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, items[i].ID, id)
		}
	}
}
