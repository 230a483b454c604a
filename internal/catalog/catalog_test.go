package catalog

import (
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/testutil"
)

// Fixture builders shared by the engine tests.

func strPtr(s string) *string {
	return &s
}

func systemItem(id string, ct model.CatalogType, name string, parentID *string, level int) model.CatalogItem {
	return model.CatalogItem{
		ID:          id,
		CatalogType: ct,
		Name:        name,
		Slug:        model.Slugify(name),
		ParentID:    parentID,
		Level:       level,
		IsSystem:    true,
		IsActive:    true,
	}
}

func userItem(id, userID string, ct model.CatalogType, name string, parentID *string, level int) model.CatalogItem {
	return model.CatalogItem{
		ID:          id,
		CatalogType: ct,
		Name:        name,
		Slug:        model.Slugify(name),
		ParentID:    parentID,
		Level:       level,
		UserID:      &userID,
		IsActive:    true,
	}
}

// seedFoodTree sets up the canonical transaction-category fixture: a system
// Food root with Groceries and Restaurants children.
func seedFoodTree(store *testutil.MemStore) {
	store.Put(systemItem("food", model.TypeTransactionCategory, "Food", nil, 0))
	store.Put(systemItem("groceries", model.TypeTransactionCategory, "Groceries", strPtr("food"), 1))
	store.Put(systemItem("restaurants", model.TypeTransactionCategory, "Restaurants", strPtr("food"), 1))
}
