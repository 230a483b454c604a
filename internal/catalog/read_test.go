package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/testutil"
)

func TestList_FiltersVisibilityAndSorts(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	store.Put(userItem("my-coffee", "u1", model.TypeTransactionCategory, "Coffee", strPtr("food"), 1))
	store.Put(userItem("their-bars", "u2", model.TypeTransactionCategory, "Bars", strPtr("food"), 1))
	svc := NewService(store)

	items, err := svc.List(context.Background(), ListInput{CatalogType: model.TypeTransactionCategory}, "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"my-coffee", "food", "groceries", "restaurants"}, ids,
		"system items plus the caller's own, ordered by sortOrder then name")
	assert.NotContains(t, ids, "their-bars")
}

func TestList_ParentScope(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	items, err := svc.List(context.Background(), ListInput{
		CatalogType: model.TypeTransactionCategory,
		ParentID:    strPtr("food"),
	}, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "groceries", items[0].ID)
	assert.Equal(t, "restaurants", items[1].ID)
}

func TestList_ExcludesInactiveByDefault(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	retired := userItem("retired", "u1", model.TypeTransactionCategory, "Retired", nil, 0)
	retired.IsActive = false
	store.Put(retired)
	svc := NewService(store)

	items, err := svc.List(context.Background(), ListInput{CatalogType: model.TypeTransactionCategory}, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = svc.List(context.Background(), ListInput{
		CatalogType:     model.TypeTransactionCategory,
		IncludeInactive: true,
	}, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestList_UnknownType(t *testing.T) {
	svc := NewService(testutil.NewMemStore())

	_, err := svc.List(context.Background(), ListInput{CatalogType: "pet_category"}, "u1")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestList_StorageFailureIsInternal(t *testing.T) {
	store := testutil.NewMemStore()
	store.FailNext = errors.New("disk I/O error")
	svc := NewService(store)

	_, err := svc.List(context.Background(), ListInput{CatalogType: model.TypeTransactionCategory}, "u1")
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestTree_AssemblesForest(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	store.Put(systemItem("housing", model.TypeTransactionCategory, "Housing", nil, 0))
	svc := NewService(store)

	roots, err := svc.Tree(context.Background(), ListInput{CatalogType: model.TypeTransactionCategory}, "u1")
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "food", roots[0].ID)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "groceries", roots[0].Children[0].ID)
}

func TestTree_InvisibleParentPromotesChild(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("their-root", "u2", model.TypeExerciseCategory, "Strength", nil, 0))
	store.Put(systemItem("cardio", model.TypeExerciseCategory, "Cardio", strPtr("their-root"), 1))
	svc := NewService(store)

	roots, err := svc.Tree(context.Background(), ListInput{CatalogType: model.TypeExerciseCategory}, "u1")
	require.NoError(t, err)
	require.Len(t, roots, 1, "child of a filtered-out parent surfaces as a root")
	assert.Equal(t, "cardio", roots[0].ID)
}

func TestGet_ReturnsDetail(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	detail, err := svc.Get(context.Background(), "food", "u1", false)
	require.NoError(t, err)

	assert.Equal(t, "food", detail.Item.ID)
	assert.Nil(t, detail.Parent)
	assert.Empty(t, detail.Breadcrumbs)
	require.Len(t, detail.Children, 2)
	assert.Equal(t, "groceries", detail.Children[0].ID)
	assert.Nil(t, detail.UsageCount, "usage only populated on request")
}

func TestGet_ChildCarriesParentAndBreadcrumbs(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	svc := NewService(store)

	detail, err := svc.Get(context.Background(), "groceries", "u1", false)
	require.NoError(t, err)

	require.NotNil(t, detail.Parent)
	assert.Equal(t, "food", detail.Parent.ID)
	require.Len(t, detail.Breadcrumbs, 1)
	assert.Equal(t, "Food", detail.Breadcrumbs[0].Name)
}

func TestGet_WithUsage(t *testing.T) {
	store := testutil.NewMemStore()
	seedFoodTree(store)
	store.SetUsage("groceries", 7)
	svc := NewService(store)

	detail, err := svc.Get(context.Background(), "groceries", "u1", true)
	require.NoError(t, err)
	require.NotNil(t, detail.UsageCount)
	assert.Equal(t, 7, *detail.UsageCount)
}

func TestGet_MissingItem(t *testing.T) {
	svc := NewService(testutil.NewMemStore())

	_, err := svc.Get(context.Background(), "nope", "u1", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_InvisibleItemReportsNotFound(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(userItem("their-item", "u2", model.TypeMealCategory, "Brunch", nil, 0))
	svc := NewService(store)

	// Another user's item must be indistinguishable from a missing one.
	_, err := svc.Get(context.Background(), "their-item", "u1", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NotErrorIs(t, err, common.ErrForbidden)
}

func TestGet_HidesInactiveAndForeignChildren(t *testing.T) {
	store := testutil.NewMemStore()
	store.Put(systemItem("root", model.TypeFoodCategory, "Produce", nil, 0))
	store.Put(systemItem("kept", model.TypeFoodCategory, "Fruit", strPtr("root"), 1))
	inactive := systemItem("gone", model.TypeFoodCategory, "Vegetables", strPtr("root"), 1)
	inactive.IsActive = false
	store.Put(inactive)
	store.Put(userItem("foreign", "u2", model.TypeFoodCategory, "Foraged", strPtr("root"), 1))
	svc := NewService(store)

	detail, err := svc.Get(context.Background(), "root", "u1", false)
	require.NoError(t, err)
	require.Len(t, detail.Children, 1)
	assert.Equal(t, "kept", detail.Children[0].ID)
}
